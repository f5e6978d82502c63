package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes messages to the log instead of delivering them. It is
// meant for local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, env *Envelope) (string, error) {
	id := "<" + uuid.NewString() + "@log.local>"
	s.logger.InfoContext(ctx, "email not delivered (log provider)",
		"message_id", id,
		"to", env.To,
		"subject", env.Subject,
		"bytes", len(env.HTML),
	)
	s.logger.DebugContext(ctx, "email body", "message_id", id, "text", env.Text)
	return id, nil
}

// Verify implements Verifier.
func (s *LogSender) Verify(context.Context) error { return nil }
