package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/binder"
)

type submitRequest struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/comments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()
		var req submitRequest
		err := binder.JSON()(jsonRequest(http.MethodPost, `{"author_name":"a","content":"hi"}`), &req)
		require.NoError(t, err)
		assert.Equal(t, "a", req.AuthorName)
		assert.Equal(t, "hi", req.Content)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		var req submitRequest
		err := binder.JSON()(jsonRequest(http.MethodPost, `{"author_name":"a","status":"approved"}`), &req)
		require.ErrorIs(t, err, binder.ErrFailedToParseJSON)
		assert.ErrorIs(t, err, core.ErrBadRequest)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()
		var req submitRequest
		err := binder.JSON()(jsonRequest(http.MethodPost, `{"content":"a"}{"content":"b"}`), &req)
		require.ErrorIs(t, err, binder.ErrFailedToParseJSON)
	})

	t.Run("rejects wrong content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		err := binder.JSON()(req, &submitRequest{})
		require.ErrorIs(t, err, binder.ErrUnsupportedMediaType)
	})

	t.Run("rejects missing content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{}`))
		err := binder.JSON()(req, &submitRequest{})
		require.ErrorIs(t, err, binder.ErrMissingContentType)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		t.Parallel()
		body := `{"content":"` + strings.Repeat("a", 64) + `"}`
		err := binder.JSONWithLimit(16)(jsonRequest(http.MethodPost, body), &submitRequest{})
		require.ErrorIs(t, err, binder.ErrFailedToParseJSON)
	})

	t.Run("skips bodiless delete", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodDelete, "/comments/1", nil)
		err := binder.JSON()(req, &submitRequest{})
		require.ErrorIs(t, err, binder.ErrBinderNotApplicable)
	})
}

func TestPathAndQuery(t *testing.T) {
	t.Parallel()

	type listRequest struct {
		ArticleID string        `path:"id"`
		Limit     int           `query:"limit"`
		Offset    uint          `query:"offset"`
		Actions   []string      `query:"action"`
		Since     time.Time     `query:"since"`
		Window    time.Duration `query:"window"`
		Ignored   string
	}

	req := httptest.NewRequest(http.MethodGet,
		"/comments/article/a-1?limit=10&offset=5&action=comment.approved,comment.rejected&since=2026-01-02T03:04:05Z&window=1h", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "a-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	var got listRequest
	require.NoError(t, binder.ChiPath()(req, &got))
	require.NoError(t, binder.Query()(req, &got))

	assert.Equal(t, "a-1", got.ArticleID)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, uint(5), got.Offset)
	assert.Equal(t, []string{"comment.approved", "comment.rejected"}, got.Actions)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got.Since)
	assert.Equal(t, time.Hour, got.Window)
	assert.Empty(t, got.Ignored)
}

func TestQuery_InvalidValue(t *testing.T) {
	t.Parallel()

	var got struct {
		Limit int `query:"limit"`
	}
	req := httptest.NewRequest(http.MethodGet, "/audit?limit=ten", nil)
	err := binder.Query()(req, &got)
	require.ErrorIs(t, err, binder.ErrFailedToParseQuery)
	assert.ErrorIs(t, err, core.ErrBadRequest)
}
