package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Brand is the name shown in email footers.
const Brand = "WebFusionLab"

// NoPhone is shown in the admin notification when the submitter left the
// phone field empty.
const NoPhone = "Não fornecido"

// dateLayout renders timestamps the way Brazilian/Portuguese readers expect.
const dateLayout = "02/01/2006, 15:04:05"

// ContactDetails is a submitted contact form. Fields are expected to be
// trimmed and validated already.
type ContactDetails struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// ReplyDetails is a manual reply to a previous contact.
type ReplyDetails struct {
	Email   string
	Subject string
	Message string
}

type templateData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Lines   []string
	Date    string
	Brand   string
	Year    int
}

func newTemplateData(now time.Time) templateData {
	return templateData{
		Date:  now.Format(dateLayout),
		Brand: Brand,
		Year:  now.Year(),
	}
}

// RenderContactNotification renders the email sent to the site operator.
func RenderContactNotification(c ContactDetails, now time.Time) (string, error) {
	data := newTemplateData(now)
	data.Name = c.Name
	data.Email = c.Email
	data.Phone = c.Phone
	if data.Phone == "" {
		data.Phone = NoPhone
	}
	data.Subject = c.Subject
	data.Lines = splitLines(c.Message)
	return render("contact_notification.html", data)
}

// RenderContactConfirmation renders the acknowledgement sent to the submitter.
func RenderContactConfirmation(c ContactDetails, now time.Time) (string, error) {
	data := newTemplateData(now)
	data.Name = c.Name
	data.Subject = c.Subject
	return render("contact_confirmation.html", data)
}

// RenderReply renders a manual reply.
func RenderReply(r ReplyDetails, now time.Time) (string, error) {
	data := newTemplateData(now)
	data.Subject = r.Subject
	data.Lines = splitLines(r.Message)
	return render("reply.html", data)
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

var newlineRe = regexp.MustCompile(`\r?\n`)

func splitLines(s string) []string {
	return newlineRe.Split(s, -1)
}

var headerBreakRe = regexp.MustCompile(`[\r\n]+`)

// SanitizeHeader collapses line breaks in a header value so user input can
// not inject extra headers.
func SanitizeHeader(v string) string {
	return strings.TrimSpace(headerBreakRe.ReplaceAllString(v, " "))
}

var (
	headRe      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	blankRunsRe = regexp.MustCompile(`\n\s*\n+`)
)

// PlainText derives a text/plain alternative from an HTML body.
func PlainText(body string) string {
	s := headRe.ReplaceAllString(body, "")
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankRunsRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
