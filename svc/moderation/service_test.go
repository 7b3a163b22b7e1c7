package moderation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/moderation"
)

var (
	admin  = identity.Actor{ID: "admin-1", Role: identity.RoleAdmin}
	editor = identity.Actor{ID: "editor-1", Role: identity.RoleEditor}
)

func validInput() moderation.SubmitInput {
	return moderation.SubmitInput{
		ArticleID:   "article-1",
		AuthorName:  "Jane Reader",
		AuthorEmail: "Jane@Example.com",
		AuthorURL:   "https://jane.example.com/blog",
		Content:     "Great article, thanks for writing it.",
		IP:          "203.0.113.7",
		UserAgent:   "Mozilla/5.0",
	}
}

type articleGuard map[string]bool

func (g articleGuard) IsPublished(_ context.Context, id string) (bool, error) {
	return g[id], nil
}

type capturingNotifier struct {
	mu       sync.Mutex
	comments []moderation.Comment
}

func (n *capturingNotifier) CommentPending(_ context.Context, c moderation.Comment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.comments = append(n.comments, c)
}

func newService(t *testing.T, opts ...moderation.Option) (*moderation.Service, *audit.Recorder) {
	t.Helper()
	rec := &audit.Recorder{}
	opts = append([]moderation.Option{moderation.WithAuditSink(rec)}, opts...)
	return moderation.NewService(moderation.NewMemoryStore(), threat.MustNew(), opts...), rec
}

func submit(t *testing.T, svc *moderation.Service) moderation.Comment {
	t.Helper()
	c, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	return c
}

func TestService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("stores a sanitized pending comment", func(t *testing.T) {
		t.Parallel()
		notifier := &capturingNotifier{}
		svc, rec := newService(t, moderation.WithNotifier(notifier))

		in := validInput()
		in.AuthorName = "  Jane   Reader "
		in.Content = "Nice <b>post</b>\x00!"

		c, err := svc.Submit(context.Background(), in)
		require.NoError(t, err)

		assert.NotEmpty(t, c.ID)
		assert.Equal(t, moderation.StatusPending, c.Status)
		assert.Equal(t, "Jane Reader", c.AuthorName)
		assert.Equal(t, "jane@example.com", c.AuthorEmail)
		assert.Equal(t, "Nice post!", c.Content)
		assert.Equal(t, "203.0.113.7", c.IP)
		assert.False(t, c.SubmittedAt.IsZero())

		assert.Equal(t, []string{moderation.ActionSubmitted}, rec.Actions())
		require.Len(t, notifier.comments, 1)
		assert.Equal(t, c.ID, notifier.comments[0].ID)
	})

	t.Run("rejects invalid input with all violations and one audit event", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		in := validInput()
		in.AuthorName = "<b>Jane</b>"
		in.AuthorEmail = "not-an-email"
		in.AuthorURL = "javascript:alert(1)"
		in.Content = `<img src=x onerror="alert(1)">`

		_, err := svc.Submit(context.Background(), in)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))
		assert.Equal(t, core.ErrValidation, core.Classify(err))

		verrs := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{validator.CodeContainsMarkup}, verrs.Codes("authorName"))
		assert.Equal(t, []string{validator.CodeInvalidEmail}, verrs.Codes("authorEmail"))
		assert.Equal(t, []string{validator.CodeInvalidURL}, verrs.Codes("authorUrl"))
		assert.Equal(t, []string{validator.CodeContainsMarkup, validator.CodeInvalidContent}, verrs.Codes("content"))

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, moderation.ActionSubmit, events[0].Action)
		assert.Equal(t, audit.ResultRejected, events[0].Result)
		assert.Equal(t, "VALIDATION_ERROR", events[0].Reason)

		all, err := svc.ListAll(context.Background(), admin, moderation.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("rejects markup in content instead of stripping it", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		in := validInput()
		in.Content = "<b></b>"
		_, err := svc.Submit(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, []string{validator.CodeContainsMarkup}, validator.ExtractValidationErrors(err).Codes("content"))
		assert.Len(t, rec.Events(), 1)
	})

	t.Run("rejects fields that are empty after cleaning", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		in := validInput()
		in.AuthorName = "\x01\x02"
		in.Content = "\x01\x02\x03"
		_, err := svc.Submit(context.Background(), in)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{validator.CodeRequired}, verrs.Codes("content"))
		assert.Equal(t, []string{validator.CodeRequired}, verrs.Codes("authorName"))

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ResultRejected, events[0].Result)

		all, err := svc.ListAll(context.Background(), admin, moderation.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("requires a published article when guarded", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t, moderation.WithArticleGuard(articleGuard{"article-1": true}))

		_, err := svc.Submit(context.Background(), validInput())
		require.NoError(t, err)

		in := validInput()
		in.ArticleID = "draft-article"
		_, err = svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, moderation.ErrArticleNotFound)
	})
}

func TestService_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("approve makes the comment public", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)
		c := submit(t, svc)

		public, err := svc.ListApproved(context.Background(), c.ArticleID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, public)

		rec.Reset()
		approved, err := svc.Approve(context.Background(), c.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, approved.Status)
		assert.Equal(t, admin.ID, approved.ModeratedBy)
		require.NotNil(t, approved.ModeratedAt)

		public, err = svc.ListApproved(context.Background(), c.ArticleID, 0, 0)
		require.NoError(t, err)
		require.Len(t, public, 1)
		assert.Equal(t, c.ID, public[0].ID)

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, moderation.ActionApproved, events[0].Action)
		assert.Equal(t, admin.ID, events[0].ActorID)
		assert.Equal(t, c.ID, events[0].ResourceID)
		assert.Equal(t, "pending", events[0].Metadata["previous_state"])
		assert.Equal(t, "approved", events[0].Metadata["new_state"])
	})

	t.Run("approve twice is an invalid state", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)
		c := submit(t, svc)

		_, err := svc.Approve(context.Background(), c.ID, admin)
		require.NoError(t, err)

		rec.Reset()
		_, err = svc.Approve(context.Background(), c.ID, admin)
		assert.ErrorIs(t, err, moderation.ErrInvalidState)
		assert.Empty(t, rec.Events())
	})

	t.Run("rejected comments cannot be approved", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		c := submit(t, svc)

		rejected, err := svc.Reject(context.Background(), c.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusRejected, rejected.Status)

		_, err = svc.Approve(context.Background(), c.ID, admin)
		assert.ErrorIs(t, err, moderation.ErrInvalidState)

		public, err := svc.ListApproved(context.Background(), c.ArticleID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, public)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)

		_, err := svc.Approve(context.Background(), "missing", admin)
		assert.ErrorIs(t, err, moderation.ErrCommentNotFound)
		_, err = svc.Reject(context.Background(), "missing", admin)
		assert.ErrorIs(t, err, moderation.ErrCommentNotFound)
		err = svc.Delete(context.Background(), "missing", admin)
		assert.ErrorIs(t, err, moderation.ErrCommentNotFound)
	})

	t.Run("delete from any state", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)
		pending := submit(t, svc)
		approved := submit(t, svc)
		_, err := svc.Approve(context.Background(), approved.ID, admin)
		require.NoError(t, err)

		rec.Reset()
		require.NoError(t, svc.Delete(context.Background(), pending.ID, admin))
		require.NoError(t, svc.Delete(context.Background(), approved.ID, admin))

		_, err = svc.Get(context.Background(), approved.ID, admin)
		assert.ErrorIs(t, err, moderation.ErrCommentNotFound)

		events := rec.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "pending", events[0].Metadata["previous_state"])
		assert.Equal(t, "approved", events[1].Metadata["previous_state"])
		assert.Equal(t, "deleted", events[1].Metadata["new_state"])
	})
}

func TestService_Authorization(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	c := submit(t, svc)
	rec.Reset()

	_, err := svc.Approve(context.Background(), c.ID, identity.Actor{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Reject(context.Background(), c.ID, editor)
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.Delete(context.Background(), c.ID, editor)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.ListPending(context.Background(), editor, 0, 0)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.BulkApprove(context.Background(), []string{c.ID}, editor)
	assert.ErrorIs(t, err, core.ErrForbidden)

	got, err := svc.Get(context.Background(), c.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusPending, got.Status)

	for _, e := range rec.Events() {
		assert.Equal(t, moderation.ActionDenied, e.Action)
		assert.Equal(t, audit.ResultRejected, e.Result)
	}
	assert.Len(t, rec.Events(), 4)
}

func TestService_Bulk(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	first := submit(t, svc)
	second := submit(t, svc)
	_, err := svc.Reject(context.Background(), second.ID, admin)
	require.NoError(t, err)

	rec.Reset()
	res, err := svc.BulkApprove(context.Background(), []string{first.ID, second.ID, "missing"}, admin)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Items, 3)
	assert.Equal(t, moderation.BulkItem{ID: first.ID, OK: true}, res.Items[0])
	assert.Equal(t, "INVALID_OPERATION", res.Items[1].Code)
	assert.Equal(t, "NOT_FOUND", res.Items[2].Code)
	assert.Equal(t, []string{moderation.ActionApproved}, rec.Actions())

	res, err = svc.BulkDelete(context.Background(), []string{first.ID, second.ID}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	rec.Reset()
	_, err = svc.BulkReject(context.Background(), nil, admin)
	assert.True(t, validator.IsValidationError(err))
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, moderation.ActionBulk, events[0].Action)
	assert.Equal(t, audit.ResultRejected, events[0].Result)
	assert.Equal(t, "VALIDATION_ERROR", events[0].Reason)
	assert.Equal(t, moderation.ActionRejected, events[0].Metadata["attempted"])

	rec.Reset()
	tooMany := make([]string, moderation.MaxBulkItems+1)
	for i := range tooMany {
		tooMany[i] = first.ID
	}
	_, err = svc.BulkApprove(context.Background(), tooMany, admin)
	assert.True(t, validator.IsValidationError(err))
	assert.Equal(t, []string{moderation.ActionBulk}, rec.Actions())
}

func TestService_ConcurrentApproveReject(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	c := submit(t, svc)
	rec.Reset()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.Approve(context.Background(), c.ID, admin)
			} else {
				_, err = svc.Reject(context.Background(), c.ID, admin)
			}
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, moderation.ErrInvalidState), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Len(t, rec.Events(), 1)
}

func TestService_WithClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, moderation.WithClock(func() time.Time { return fixed }))

	c := submit(t, svc)
	assert.Equal(t, fixed, c.SubmittedAt)
}
