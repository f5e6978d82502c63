// Package mailer renders the contact form emails and delivers them through
// a pluggable Sender.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Subjects of the generated emails.
const (
	ContactSubjectPrefix = "[CONTACTO] "
	ConfirmationSubject  = "Confirmação: Seu contacto foi recebido"
)

// Mailer addresses, renders and sends transactional email. The Sender is
// shared by all requests.
type Mailer struct {
	sender      Sender
	fromName    string
	fromAddress string
	adminEmail  string
	logger      *slog.Logger
	now         func() time.Time
}

// Options configures a Mailer.
type Options struct {
	SenderName  string
	SenderEmail string
	// AdminEmail receives contact notifications. Defaults to SenderEmail.
	AdminEmail string
	Logger     *slog.Logger
	Now        func() time.Time
}

func New(sender Sender, opts Options) *Mailer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	admin := opts.AdminEmail
	if admin == "" {
		admin = opts.SenderEmail
	}
	return &Mailer{
		sender:      sender,
		fromName:    opts.SenderName,
		fromAddress: opts.SenderEmail,
		adminEmail:  admin,
		logger:      logger,
		now:         now,
	}
}

// Message is an outgoing email before addressing.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	// Text is the plain-text alternative. Derived from HTML when empty.
	Text string
}

// Send delivers msg and returns the message id assigned by the transport.
// Transport failures are logged and returned; they never panic.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.fromAddress == "" {
		return "", fmt.Errorf("%w: SENDER_EMAIL is empty", ErrNotConfigured)
	}
	text := msg.Text
	if text == "" {
		text = PlainText(msg.HTML)
	}
	env := &Envelope{
		FromName:    m.fromName,
		FromAddress: m.fromAddress,
		To:          msg.To,
		ReplyTo:     msg.ReplyTo,
		Subject:     SanitizeHeader(msg.Subject),
		HTML:        msg.HTML,
		Text:        text,
	}

	id, err := m.sender.Send(ctx, env)
	if err != nil {
		m.logger.ErrorContext(ctx, "email delivery failed", "to", env.To, "subject", env.Subject, "error", err)
		return "", err
	}
	m.logger.InfoContext(ctx, "email sent", "to", env.To, "subject", env.Subject, "message_id", id)
	return id, nil
}

// VerifyConnection probes the transport. Senders without a probe are
// assumed reachable.
func (m *Mailer) VerifyConnection(ctx context.Context) bool {
	v, ok := m.sender.(Verifier)
	if !ok {
		return true
	}
	if err := v.Verify(ctx); err != nil {
		m.logger.WarnContext(ctx, "mail transport verification failed", "error", err)
		return false
	}
	m.logger.InfoContext(ctx, "mail transport verified")
	return true
}

// ErrNotificationFailed wraps a failure of the admin notification leg of a
// contact submission.
var ErrNotificationFailed = errors.New("contact notification failed")

// SendContact notifies the operator about a contact submission and then
// sends a confirmation to the submitter. Only the notification is critical:
// if it fails nothing else is sent and an error is returned, while a failed
// confirmation is logged and otherwise ignored.
func (m *Mailer) SendContact(ctx context.Context, c ContactDetails) (string, error) {
	now := m.now()

	adminHTML, err := RenderContactNotification(c, now)
	if err != nil {
		return "", err
	}
	id, err := m.Send(ctx, Message{
		To:      m.adminEmail,
		ReplyTo: c.Email,
		Subject: ContactSubjectPrefix + SanitizeHeader(c.Subject),
		HTML:    adminHTML,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	userHTML, err := RenderContactConfirmation(c, now)
	if err != nil {
		m.logger.ErrorContext(ctx, "render contact confirmation", "error", err)
		return id, nil
	}
	if _, err := m.Send(ctx, Message{To: c.Email, Subject: ConfirmationSubject, HTML: userHTML}); err != nil {
		m.logger.WarnContext(ctx, "contact confirmation not delivered", "to", c.Email)
	}
	return id, nil
}

// SendReply sends a manual reply to a previous contact.
func (m *Mailer) SendReply(ctx context.Context, r ReplyDetails) (string, error) {
	body, err := RenderReply(r, m.now())
	if err != nil {
		return "", err
	}
	return m.Send(ctx, Message{To: r.Email, Subject: r.Subject, HTML: body})
}
