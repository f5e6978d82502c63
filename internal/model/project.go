package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Category classifies a portfolio project.
type Category string

const (
	CategoryWeb       Category = "Web"
	CategoryMobile    Category = "Mobile"
	CategoryMarketing Category = "Marketing"
	CategoryAI        Category = "AI"
)

// Categories lists every accepted project category.
var Categories = []Category{CategoryWeb, CategoryMobile, CategoryMarketing, CategoryAI}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Stack is the ordered list of technologies used in a project. It is
// persisted as a JSON array so every supported dialect can store it in a
// single text column.
type Stack []string

// Value implements driver.Valuer.
func (s Stack) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Stack) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Stack{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("stack: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*s = Stack{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("stack: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// Project is a portfolio entry owned by exactly one admin.
type Project struct {
	ID          string    `json:"id" db:"id"`
	AdminID     string    `json:"admin_id" db:"admin_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    Category  `json:"category" db:"category"`
	Year        string    `json:"year" db:"year"`
	Stack       Stack     `json:"stack" db:"stack"`
	Image       *string   `json:"image" db:"image"`
	Link        *string   `json:"link" db:"link"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectInput is the body accepted when creating a project.
type ProjectInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    Category `json:"category" validate:"required,oneof=Web Mobile Marketing AI"`
	Year        string   `json:"year" validate:"required"`
	Stack       Stack    `json:"stack" validate:"required"`
	Image       *string  `json:"image,omitempty"`
	Link        *string  `json:"link,omitempty"`
}

// ProjectPatch is the body accepted when updating a project. A field takes
// part in the update only when it is present and non-empty; Stack is the
// exception and counts as present even when it is an empty list.
type ProjectPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Year        *string   `json:"year,omitempty"`
	Stack       *Stack    `json:"stack,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Link        *string   `json:"link,omitempty"`
}

// Assignment is one column = value pair of an UPDATE statement.
type Assignment struct {
	Column string
	Value  any
}

// Assignments returns the column updates carried by p, in a stable order.
func (p ProjectPatch) Assignments() []Assignment {
	var out []Assignment
	str := func(col string, v *string) {
		if v != nil && *v != "" {
			out = append(out, Assignment{col, *v})
		}
	}
	str("title", p.Title)
	str("description", p.Description)
	if p.Category != nil && *p.Category != "" {
		out = append(out, Assignment{"category", string(*p.Category)})
	}
	str("year", p.Year)
	if p.Stack != nil {
		out = append(out, Assignment{"stack", *p.Stack})
	}
	str("image", p.Image)
	str("link", p.Link)
	return out
}

// Empty reports whether p would change nothing.
func (p ProjectPatch) Empty() bool {
	return len(p.Assignments()) == 0
}
