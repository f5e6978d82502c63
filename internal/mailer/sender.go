package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the selected provider is missing
// required settings.
var ErrNotConfigured = errors.New("mail provider not configured")

// Envelope is a fully addressed message ready for a Sender.
type Envelope struct {
	FromName    string
	FromAddress string
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
}

// Sender delivers a single message and returns the transport's message id.
type Sender interface {
	Send(ctx context.Context, env *Envelope) (string, error)
}

// Verifier is implemented by senders that can probe their transport.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Provider names.
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderMailgun  = "mailgun"
	ProviderLog      = "log"
)

// SMTPConfig holds the settings of the SMTP sender.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SendGridConfig holds the settings of the SendGrid sender.
type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

// MailgunConfig holds the settings of the Mailgun sender.
type MailgunConfig struct {
	Domain  string `yaml:"domain"`
	APIKey  string `yaml:"api_key"`
	APIBase string `yaml:"api_base"`
}

// Config selects and configures the mail provider.
type Config struct {
	Provider    string         `yaml:"provider"`
	SenderName  string         `yaml:"sender_name"`
	SenderEmail string         `yaml:"sender_email"`
	AdminEmail  string         `yaml:"admin_email"`
	SMTP        SMTPConfig     `yaml:"smtp"`
	SendGrid    SendGridConfig `yaml:"sendgrid"`
	Mailgun     MailgunConfig  `yaml:"mailgun"`
}

// NewSender returns the Sender selected by cfg.Provider.
func NewSender(cfg Config, logger *slog.Logger) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderSMTP:
		return NewSMTPSender(cfg.SMTP)
	case ProviderSendGrid:
		return NewSendGridSender(cfg.SendGrid)
	case ProviderMailgun:
		return NewMailgunSender(cfg.Mailgun)
	case ProviderLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q (supported: smtp, sendgrid, mailgun, log)", cfg.Provider)
	}
}

// UnavailableSender fails every send with Err. It stands in for a provider
// that could not be built so that the API still starts without email.
type UnavailableSender struct {
	Err error
}

// Send implements Sender.
func (s UnavailableSender) Send(context.Context, *Envelope) (string, error) {
	return "", s.Err
}

// Verify implements Verifier.
func (s UnavailableSender) Verify(context.Context) error {
	return s.Err
}
