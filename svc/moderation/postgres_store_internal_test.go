package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Queries(t *testing.T) {
	t.Parallel()

	s := NewPostgresStore(nil, "")

	t.Run("transition is conditional on the stored status", func(t *testing.T) {
		t.Parallel()
		at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		query, args, err := s.transitionQuery("c1", Transition{
			From: StatusPending, To: StatusApproved, ActorID: "admin", At: at,
		})
		require.NoError(t, err)
		assert.Equal(t,
			"UPDATE comments SET status = $1, moderated_by = $2, moderated_at = $3, updated_at = $4 WHERE id = $5 AND status = $6",
			query)
		assert.Equal(t, []any{"approved", "admin", at, at, "c1", "pending"}, args)
	})

	t.Run("list applies filters", func(t *testing.T) {
		t.Parallel()
		query, args, err := s.listQuery(Filter{ArticleID: "a1", Status: StatusApproved}.Normalize())
		require.NoError(t, err)
		assert.Contains(t, query, "FROM comments WHERE article_id = $1 AND status = $2")
		assert.Contains(t, query, "ORDER BY submitted_at ASC, id ASC LIMIT 50 OFFSET 0")
		assert.Equal(t, []any{"a1", "approved"}, args)
	})

	t.Run("list without filters", func(t *testing.T) {
		t.Parallel()
		query, args, err := s.listQuery(Filter{Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "LIMIT 5 OFFSET 10")
		assert.Empty(t, args)
	})
}
