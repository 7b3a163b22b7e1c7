package moderation_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/svc/moderation"
)

func seed(t *testing.T, s *moderation.MemoryStore, n int, articleID string, status moderation.Status) []moderation.Comment {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]moderation.Comment, 0, n)
	for i := range n {
		c := moderation.Comment{
			ID:          fmt.Sprintf("%s-%s-%02d", articleID, status, i),
			ArticleID:   articleID,
			Status:      status,
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Create(context.Background(), c))
		out = append(out, c)
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("create rejects duplicates", func(t *testing.T) {
		t.Parallel()
		s := moderation.NewMemoryStore()
		c := moderation.Comment{ID: "c1", Status: moderation.StatusPending}
		require.NoError(t, s.Create(context.Background(), c))
		assert.ErrorIs(t, s.Create(context.Background(), c), moderation.ErrDuplicateID)
	})

	t.Run("compare and transition", func(t *testing.T) {
		t.Parallel()
		s := moderation.NewMemoryStore()
		require.NoError(t, s.Create(context.Background(), moderation.Comment{ID: "c1", Status: moderation.StatusPending}))

		at := time.Now().UTC()
		ok, err := s.CompareAndTransition(context.Background(), "c1", moderation.Transition{
			From: moderation.StatusApproved, To: moderation.StatusRejected, ActorID: "a", At: at,
		})
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.CompareAndTransition(context.Background(), "c1", moderation.Transition{
			From: moderation.StatusPending, To: moderation.StatusApproved, ActorID: "a", At: at,
		})
		require.NoError(t, err)
		assert.True(t, ok)

		c, err := s.Get(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, c.Status)
		assert.Equal(t, "a", c.ModeratedBy)
		assert.Equal(t, at, c.UpdatedAt)

		ok, err = s.CompareAndTransition(context.Background(), "missing", moderation.Transition{
			From: moderation.StatusPending, To: moderation.StatusApproved,
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		s := moderation.NewMemoryStore()
		require.NoError(t, s.Create(context.Background(), moderation.Comment{ID: "c1"}))

		ok, err := s.Delete(context.Background(), "c1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Delete(context.Background(), "c1")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Get(context.Background(), "c1")
		assert.ErrorIs(t, err, moderation.ErrCommentNotFound)
	})

	t.Run("list filters and pages oldest first", func(t *testing.T) {
		t.Parallel()
		s := moderation.NewMemoryStore()
		approved := seed(t, s, 5, "a1", moderation.StatusApproved)
		seed(t, s, 3, "a1", moderation.StatusPending)
		seed(t, s, 2, "a2", moderation.StatusApproved)

		got, err := s.List(context.Background(), moderation.Filter{ArticleID: "a1", Status: moderation.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, approved, got)

		got, err = s.List(context.Background(), moderation.Filter{ArticleID: "a1", Status: moderation.StatusApproved, Limit: 2, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, approved[3:], got)

		got, err = s.List(context.Background(), moderation.Filter{Offset: 100})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.List(context.Background(), moderation.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})
}

func TestFilter_Normalize(t *testing.T) {
	t.Parallel()

	f := moderation.Filter{Limit: -1, Offset: -5}.Normalize()
	assert.Equal(t, moderation.DefaultListLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = moderation.Filter{Limit: 10_000}.Normalize()
	assert.Equal(t, moderation.MaxListLimit, f.Limit)
}
