package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
}

func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: SENDGRID_API_KEY is empty", ErrNotConfigured)
	}
	return &SendGridSender{client: sendgrid.NewSendClient(cfg.APIKey)}, nil
}

// Send implements Sender.
func (s *SendGridSender) Send(ctx context.Context, env *Envelope) (string, error) {
	from := sgmail.NewEmail(env.FromName, env.FromAddress)
	to := sgmail.NewEmail("", env.To)
	message := sgmail.NewSingleEmail(from, env.Subject, to, env.Text, env.HTML)
	if env.ReplyTo != "" {
		message.SetReplyTo(sgmail.NewEmail("", env.ReplyTo))
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid send: status code %d", response.StatusCode)
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
