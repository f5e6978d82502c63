package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/webfusionlab/webfusion/internal/model"
)

var validate = newValidator()

// newValidator reports failures under JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors validates s and maps each failing JSON field to the tag that
// rejected it. It returns nil when s is valid.
func fieldErrors(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = e.Tag()
	}
	return out
}

const (
	msgProjectRequired = "Campos obrigatórios: title, description, category, year, stack"
	msgInvalidCategory = "Categoria inválida. Use: Web, Mobile, Marketing ou AI"
)

// projectInputMessage turns the validation failures of a ProjectInput into
// the message returned to the client. Missing fields are reported first.
func projectInputMessage(errs map[string]string) string {
	for _, tag := range errs {
		if tag == "required" {
			return msgProjectRequired
		}
	}
	if _, ok := errs["category"]; ok {
		return msgInvalidCategory
	}
	return msgProjectRequired
}

// blankToNil clears optional string fields that hold only whitespace.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// emailPattern is the loose address check applied to contact submissions.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// validCategory reports whether a patch leaves the category alone or sets it
// to a known value.
func validCategory(c *model.Category) bool {
	return c == nil || *c == "" || c.Valid()
}
