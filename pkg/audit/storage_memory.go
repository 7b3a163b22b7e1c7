package audit

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage keeps events in process memory. Suitable for tests and
// single-instance development setups.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStorage) Query(_ context.Context, c Criteria) ([]Event, error) {
	c = c.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, min(c.Limit, len(s.events)))
	skipped := 0
	for _, e := range slices.Backward(s.events) {
		if !c.Matches(e) {
			continue
		}
		if skipped < c.Offset {
			skipped++
			continue
		}
		out = append(out, e)
		if len(out) == c.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStorage) Prune(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e Event) bool {
		return e.CreatedAt.Before(before)
	})
	return int64(n - len(s.events)), nil
}

// Events returns a copy of everything stored, oldest first.
func (s *MemoryStorage) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
