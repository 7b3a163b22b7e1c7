package audit

import (
	"context"
	"errors"
	"time"
)

// Storage persists batches of events. Implementations must be safe for
// concurrent use.
type Storage interface {
	Store(ctx context.Context, events []Event) error
}

// Reader is implemented by storages that can answer queries.
type Reader interface {
	Query(ctx context.Context, c Criteria) ([]Event, error)
}

// Pruner is implemented by storages that can delete old events.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Criteria filters events. Zero fields are ignored. Results are ordered
// newest first.
type Criteria struct {
	Action     string
	Resource   string
	ResourceID string
	ActorID    string
	Result     Result
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 500
)

// Normalize clamps the limit and offset into their valid ranges.
func (c Criteria) Normalize() Criteria {
	if c.Limit <= 0 {
		c.Limit = DefaultQueryLimit
	}
	if c.Limit > MaxQueryLimit {
		c.Limit = MaxQueryLimit
	}
	if c.Offset < 0 {
		c.Offset = 0
	}
	return c
}

// Matches reports whether e satisfies the criteria filters.
func (c Criteria) Matches(e Event) bool {
	switch {
	case c.Action != "" && e.Action != c.Action:
		return false
	case c.Resource != "" && e.Resource != c.Resource:
		return false
	case c.ResourceID != "" && e.ResourceID != c.ResourceID:
		return false
	case c.ActorID != "" && e.ActorID != c.ActorID:
		return false
	case c.Result != "" && e.Result != c.Result:
		return false
	case !c.Since.IsZero() && e.CreatedAt.Before(c.Since):
		return false
	case !c.Until.IsZero() && !e.CreatedAt.Before(c.Until):
		return false
	}
	return true
}

// Multi writes every batch to all storages. Queries go to the first storage
// that implements Reader, pruning goes to every Pruner.
type Multi []Storage

func (m Multi) Store(ctx context.Context, events []Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Store(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Query(ctx context.Context, c Criteria) ([]Event, error) {
	for _, s := range m {
		if r, ok := s.(Reader); ok {
			return r.Query(ctx, c)
		}
	}
	return nil, ErrQueryNotSupported
}

func (m Multi) Prune(ctx context.Context, before time.Time) (int64, error) {
	var (
		total int64
		errs  []error
	)
	for _, s := range m {
		p, ok := s.(Pruner)
		if !ok {
			continue
		}
		n, err := p.Prune(ctx, before)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
