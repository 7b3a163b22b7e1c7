package publication

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// Store persists articles.
type Store interface {
	Create(ctx context.Context, a Article) error
	// Get returns ErrArticleNotFound for an unknown id.
	Get(ctx context.Context, id string) (Article, error)
	// Revise replaces the editable fields and leaves the status untouched.
	// It reports false when the article does not exist.
	Revise(ctx context.Context, id string, r Revision) (bool, error)
	// CompareAndTransition moves the article to t.To only if its stored
	// status is still t.From.
	CompareAndTransition(ctx context.Context, id string, t Transition) (bool, error)
	List(ctx context.Context, f Filter) ([]Article, error)
}

// Revision carries the sanitized editable fields of an article.
type Revision struct {
	Title     string
	Summary   string
	Content   string
	SourceURL string
	At        time.Time
}

// Transition describes a conditional status change. PublishedAt is written
// only when set.
type Transition struct {
	From        Status
	To          Status
	At          time.Time
	PublishedAt *time.Time
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Filter selects articles for listing, newest first. Zero fields match
// everything.
type Filter struct {
	Status Status
	Limit  int
	Offset int
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

// MemoryStore keeps articles in a map.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]Article)}
}

func (s *MemoryStore) Create(_ context.Context, a Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[a.ID]; ok {
		return ErrDuplicateID
	}
	s.articles[a.ID] = a
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrArticleNotFound
	}
	return a, nil
}

func (s *MemoryStore) Revise(_ context.Context, id string, r Revision) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok {
		return false, nil
	}
	a.Title = r.Title
	a.Summary = r.Summary
	a.Content = r.Content
	a.SourceURL = r.SourceURL
	a.UpdatedAt = r.At
	s.articles[id] = a
	return true, nil
}

func (s *MemoryStore) CompareAndTransition(_ context.Context, id string, t Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok || a.Status != t.From {
		return false, nil
	}
	a.Status = t.To
	a.UpdatedAt = t.At
	if t.PublishedAt != nil {
		at := *t.PublishedAt
		a.PublishedAt = &at
	}
	s.articles[id] = a
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Article, error) {
	f = f.Normalize()

	s.mu.RLock()
	out := make([]Article, 0, len(s.articles))
	for _, a := range s.articles {
		if f.Status == "" || a.Status == f.Status {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Article) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if f.Offset >= len(out) {
		return []Article{}, nil
	}
	out = out[f.Offset:]
	return out[:min(f.Limit, len(out))], nil
}
