package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/cmsguard/pkg/logger"
)

// Retention periodically deletes events older than a maximum age.
type Retention struct {
	pruner  Pruner
	maxAge  time.Duration
	timeout time.Duration
	log     *slog.Logger
	cron    *cron.Cron
}

// RetentionOption configures a Retention job.
type RetentionOption func(*Retention)

func WithRetentionLogger(l *slog.Logger) RetentionOption {
	return func(r *Retention) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRetentionTimeout bounds a single prune run.
func WithRetentionTimeout(d time.Duration) RetentionOption {
	return func(r *Retention) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRetention schedules pruning with a cron expression ("0 3 * * *",
// "@daily", "@every 1h").
func NewRetention(p Pruner, maxAge time.Duration, schedule string, opts ...RetentionOption) (*Retention, error) {
	if p == nil {
		return nil, errors.New("audit: retention requires a pruner")
	}
	if maxAge <= 0 {
		return nil, errors.New("audit: retention max age must be positive")
	}

	r := &Retention{
		pruner:  p,
		maxAge:  maxAge,
		timeout: time.Minute,
		log:     logger.Discard(),
		cron:    cron.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("audit_retention"))

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	return r, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Retention) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running prune to finish or for
// ctx to expire.
func (r *Retention) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce prunes immediately and returns the number of deleted events.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-r.maxAge)
	return r.pruner.Prune(ctx, cutoff)
}

func (r *Retention) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.RunOnce(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "audit retention failed", logger.Error(err))
		return
	}
	r.log.InfoContext(ctx, "audit retention completed", logger.Count(int(n)))
}
