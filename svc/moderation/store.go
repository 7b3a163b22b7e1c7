package moderation

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// Store persists comments. CompareAndTransition is the only serialization
// point between concurrent moderators.
type Store interface {
	Create(ctx context.Context, c Comment) error
	// Get returns ErrCommentNotFound for an unknown id.
	Get(ctx context.Context, id string) (Comment, error)
	// CompareAndTransition moves the comment to t.To only if its stored
	// status is still t.From. It reports false when the status differs or
	// the comment is gone.
	CompareAndTransition(ctx context.Context, id string, t Transition) (bool, error)
	// Delete reports false when nothing was removed.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f Filter) ([]Comment, error)
}

// Transition describes a conditional status change.
type Transition struct {
	From    Status
	To      Status
	ActorID string
	At      time.Time
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Filter selects comments for listing. Zero fields match everything.
// Results are ordered oldest first.
type Filter struct {
	ArticleID string
	Status    Status
	Limit     int
	Offset    int
}

// Normalize clamps the limit and offset into their valid ranges.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	f.Limit = min(f.Limit, MaxListLimit)
	f.Offset = max(f.Offset, 0)
	return f
}

func (f Filter) matches(c Comment) bool {
	if f.ArticleID != "" && c.ArticleID != f.ArticleID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return true
}

// MemoryStore keeps comments in a map. It is the default store and the one
// used in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	comments map[string]Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]Comment)}
}

func (s *MemoryStore) Create(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.ID]; ok {
		return ErrDuplicateID
	}
	s.comments[c.ID] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	return c, nil
}

func (s *MemoryStore) CompareAndTransition(_ context.Context, id string, t Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok || c.Status != t.From {
		return false, nil
	}
	at := t.At
	c.Status = t.To
	c.ModeratedBy = t.ActorID
	c.ModeratedAt = &at
	c.UpdatedAt = at
	s.comments[id] = c
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return false, nil
	}
	delete(s.comments, id)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Comment, error) {
	f = f.Normalize()

	s.mu.RLock()
	out := make([]Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if f.matches(c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Comment) int {
		if n := a.SubmittedAt.Compare(b.SubmittedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if f.Offset >= len(out) {
		return []Comment{}, nil
	}
	out = out[f.Offset:]
	return out[:min(f.Limit, len(out))], nil
}
