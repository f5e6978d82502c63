package mailer

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender delivers mail through the Mailgun API.
type MailgunSender struct {
	mg *mailgun.MailgunImpl
}

func NewMailgunSender(cfg MailgunConfig) (*MailgunSender, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: MAILGUN_DOMAIN and MAILGUN_API_KEY are required", ErrNotConfigured)
	}
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &MailgunSender{mg: mg}, nil
}

// Send implements Sender.
func (s *MailgunSender) Send(ctx context.Context, env *Envelope) (string, error) {
	from := env.FromAddress
	if env.FromName != "" {
		from = fmt.Sprintf("%s <%s>", env.FromName, env.FromAddress)
	}
	message := s.mg.NewMessage(from, env.Subject, env.Text)
	message.SetHtml(env.HTML)
	if err := message.AddRecipient(env.To); err != nil {
		return "", fmt.Errorf("mailgun recipient: %w", err)
	}
	if env.ReplyTo != "" {
		message.SetReplyTo(env.ReplyTo)
	}

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	return id, nil
}
