package publication_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/publication"
)

var (
	admin  = identity.Actor{ID: "admin-1", Role: identity.RoleAdmin}
	editor = identity.Actor{ID: "editor-1", Role: identity.RoleEditor}
)

func validInput() publication.Input {
	return publication.Input{
		Title:     "Release notes",
		Summary:   "What changed this week.",
		Content:   `<p>See the <a href="https://example.com/changelog">changelog</a> or <a href="/docs">docs</a>.</p>`,
		SourceURL: "https://example.com/source",
	}
}

func newService(t *testing.T) (*publication.Service, *audit.Recorder) {
	t.Helper()
	rec := &audit.Recorder{}
	return publication.NewService(publication.NewMemoryStore(), threat.MustNew(), publication.WithAuditSink(rec)), rec
}

func create(t *testing.T, svc *publication.Service) publication.Article {
	t.Helper()
	a, err := svc.Create(context.Background(), validInput(), editor)
	require.NoError(t, err)
	return a
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("stores a sanitized draft", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		in := validInput()
		in.Title = "  Release   notes "
		in.Content = `<p style="color:red">Hello <em>world</em></p>`

		a, err := svc.Create(context.Background(), in, editor)
		require.NoError(t, err)
		assert.Equal(t, publication.StatusDraft, a.Status)
		assert.Equal(t, "Release notes", a.Title)
		assert.Equal(t, "<p>Hello <em>world</em></p>", a.Content)
		assert.Equal(t, editor.ID, a.AuthorID)
		assert.Nil(t, a.PublishedAt)
		assert.Equal(t, []string{publication.ActionCreated}, rec.Actions())
	})

	t.Run("reports every violation", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		_, err := svc.Create(context.Background(), publication.Input{
			Title:     "<script>x</script>",
			Content:   `<a href="javascript:alert(1)">click</a>`,
			SourceURL: "ftp://example.com",
		}, editor)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{validator.CodeContainsMarkup}, verrs.Codes("title"))
		assert.Contains(t, verrs.Codes("content"), validator.CodeInvalidContent)
		assert.Contains(t, verrs.Codes("content"), validator.CodeInvalidURL)
		assert.Equal(t, []string{validator.CodeInvalidURL}, verrs.Codes("sourceUrl"))

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, publication.ActionCreate, events[0].Action)
		assert.Equal(t, audit.ResultRejected, events[0].Result)

		all, err := svc.ListAll(context.Background(), admin, publication.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("body without visible text after cleaning is required", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)

		for _, content := range []string{"<style>p{}</style>", "<p>  </p>", "<div><span></span></div>"} {
			rec.Reset()
			in := validInput()
			in.Content = content
			_, err := svc.Create(context.Background(), in, editor)
			require.Error(t, err, "content %q", content)
			assert.Equal(t, []string{validator.CodeRequired},
				validator.ExtractValidationErrors(err).Codes("content"), "content %q", content)
			assert.Len(t, rec.Events(), 1, "content %q", content)
		}

		all, err := svc.ListAll(context.Background(), admin, publication.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("anonymous callers are refused", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Create(context.Background(), validInput(), identity.Actor{})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("publish stamps the publish time", func(t *testing.T) {
		t.Parallel()
		fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		rec := &audit.Recorder{}
		svc := publication.NewService(publication.NewMemoryStore(), threat.MustNew(),
			publication.WithAuditSink(rec),
			publication.WithClock(func() time.Time { return fixed }),
		)
		a := create(t, svc)

		_, err := svc.GetPublished(context.Background(), a.ID)
		assert.ErrorIs(t, err, publication.ErrArticleNotFound)

		rec.Reset()
		published, err := svc.Publish(context.Background(), a.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, publication.StatusPublished, published.Status)
		require.NotNil(t, published.PublishedAt)
		assert.Equal(t, fixed, *published.PublishedAt)

		got, err := svc.GetPublished(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, published, got)

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, publication.ActionPublished, events[0].Action)
		assert.Equal(t, "draft", events[0].Metadata["previous_state"])
		assert.Equal(t, "published", events[0].Metadata["new_state"])
	})

	t.Run("publish twice is an invalid state", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		a := create(t, svc)

		_, err := svc.Publish(context.Background(), a.ID, admin)
		require.NoError(t, err)
		_, err = svc.Publish(context.Background(), a.ID, admin)
		assert.ErrorIs(t, err, publication.ErrInvalidState)
	})

	t.Run("unpublish archives and hides", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		a := create(t, svc)

		_, err := svc.Unpublish(context.Background(), a.ID, admin)
		assert.ErrorIs(t, err, publication.ErrInvalidState)

		_, err = svc.Publish(context.Background(), a.ID, admin)
		require.NoError(t, err)
		archived, err := svc.Unpublish(context.Background(), a.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, publication.StatusArchived, archived.Status)

		_, err = svc.GetPublished(context.Background(), a.ID)
		assert.ErrorIs(t, err, publication.ErrArticleNotFound)
		list, err := svc.ListPublished(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, list)

		got, err := svc.Get(context.Background(), a.ID, editor)
		require.NoError(t, err)
		assert.Equal(t, publication.StatusArchived, got.Status)
	})

	t.Run("archive from draft and archived is terminal", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		a := create(t, svc)

		_, err := svc.Archive(context.Background(), a.ID, admin)
		require.NoError(t, err)
		_, err = svc.Publish(context.Background(), a.ID, admin)
		assert.ErrorIs(t, err, publication.ErrInvalidState)
		_, err = svc.Archive(context.Background(), a.ID, admin)
		assert.ErrorIs(t, err, publication.ErrInvalidState)
	})

	t.Run("editors cannot publish", func(t *testing.T) {
		t.Parallel()
		svc, rec := newService(t)
		a := create(t, svc)
		rec.Reset()

		_, err := svc.Publish(context.Background(), a.ID, editor)
		assert.ErrorIs(t, err, core.ErrForbidden)
		assert.Equal(t, []string{publication.ActionDenied}, rec.Actions())
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Publish(context.Background(), "missing", admin)
		assert.ErrorIs(t, err, publication.ErrArticleNotFound)
		_, err = svc.Revise(context.Background(), "missing", validInput(), editor)
		assert.ErrorIs(t, err, publication.ErrArticleNotFound)
	})
}

func TestService_Revise(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	a := create(t, svc)
	_, err := svc.Publish(context.Background(), a.ID, admin)
	require.NoError(t, err)

	in := validInput()
	in.Title = "Release notes, updated"
	revised, err := svc.Revise(context.Background(), a.ID, in, editor)
	require.NoError(t, err)
	assert.Equal(t, "Release notes, updated", revised.Title)
	assert.Equal(t, publication.StatusPublished, revised.Status)

	in.Content = `<iframe src="https://evil.example"></iframe>`
	_, err = svc.Revise(context.Background(), a.ID, in, editor)
	require.Error(t, err)
	assert.True(t, validator.IsValidationError(err))

	in.Content = "<style>p{}</style>"
	_, err = svc.Revise(context.Background(), a.ID, in, editor)
	require.Error(t, err)
	assert.Equal(t, []string{validator.CodeRequired}, validator.ExtractValidationErrors(err).Codes("content"))

	got, err := svc.GetPublished(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, revised.Content, got.Content)
}

func TestService_IsPublished(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	a := create(t, svc)

	ok, err := svc.IsPublished(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Publish(context.Background(), a.ID, admin)
	require.NoError(t, err)
	ok, err = svc.IsPublished(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsPublished(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
