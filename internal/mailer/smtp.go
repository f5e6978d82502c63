package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPSender delivers mail through an SMTP relay. Port 465 uses implicit
// TLS; other ports upgrade with STARTTLS when the server offers it.
type SMTPSender struct {
	mu     sync.Mutex
	client *mail.Client
}

// NewSMTPSender builds an SMTPSender. The connection is opened per send.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is empty", ErrNotConfigured)
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{mail.WithTimeout(timeout)}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	opts = append(opts, mail.WithPort(port))
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, env *Envelope) (string, error) {
	msg, err := buildMsg(env)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return msg.GetMessageID(), nil
}

// Verify dials the relay, authenticates and disconnects.
func (s *SMTPSender) Verify(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return s.client.Close()
}

func buildMsg(env *Envelope) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(env.FromName, env.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	msg.Subject(env.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, env.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, env.HTML)
	return msg, nil
}
