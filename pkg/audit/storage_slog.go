package audit

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/cmsguard/pkg/logger"
)

// SlogStorage writes each event as a structured log record. Useful when audit
// trails are shipped by the log pipeline instead of a database.
type SlogStorage struct {
	log   *slog.Logger
	level slog.Level
}

func NewSlogStorage(log *slog.Logger, level slog.Level) *SlogStorage {
	return &SlogStorage{log: log.With(logger.Component("audit_trail")), level: level}
}

func (s *SlogStorage) Store(ctx context.Context, events []Event) error {
	for _, e := range events {
		attrs := []slog.Attr{
			slog.String("audit_id", e.ID),
			logger.Event(e.Action),
			slog.String("result", string(e.Result)),
			slog.Time("created_at", e.CreatedAt),
		}
		if e.Resource != "" {
			attrs = append(attrs, slog.String("resource", e.Resource), slog.String("resource_id", e.ResourceID))
		}
		if e.Reason != "" {
			attrs = append(attrs, slog.String("reason", e.Reason))
		}
		attrs = append(attrs,
			logger.ActorID(e.ActorID),
			logger.Role(e.ActorRole),
			logger.RequestID(e.RequestID),
		)
		if e.IP != "" {
			attrs = append(attrs, slog.String("ip", e.IP))
		}
		if len(e.Metadata) > 0 {
			attrs = append(attrs, slog.Any("metadata", e.Metadata))
		}
		s.log.LogAttrs(ctx, s.level, "audit event", attrs...)
	}
	return nil
}
