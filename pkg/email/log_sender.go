package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
)

// LogSender writes messages to a logger instead of delivering them.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = logger.Discard()
	}
	return &LogSender{log: log.With(logger.Component("email"))}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email not delivered, logged instead",
		slog.String("to", sanitizer.MaskEmail(msg.To)),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.String("body", msg.TextBody),
	)
	return nil
}
