package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

func TestParseTokens(t *testing.T) {
	t.Parallel()

	tokens, err := identity.ParseTokens([]string{"s3cret:alice:admin", " t0ken:bob:Editor ", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]identity.Actor{
		"s3cret": {ID: "alice", Role: identity.RoleAdmin},
		"t0ken":  {ID: "bob", Role: identity.RoleEditor},
	}, tokens)

	_, err = identity.ParseTokens([]string{"missing-role:alice"})
	require.ErrorIs(t, err, identity.ErrInvalidTokenSpec)

	_, err = identity.ParseTokens([]string{"tok:alice:Owner"})
	require.ErrorIs(t, err, identity.ErrUnknownRole)

	_, err = identity.ParseTokens([]string{"tok:alice:Admin", "tok:bob:Editor"})
	require.ErrorIs(t, err, identity.ErrInvalidTokenSpec)
}

func TestTokenResolver(t *testing.T) {
	t.Parallel()

	res, err := identity.NewTokenResolver(map[string]identity.Actor{
		"s3cret": {ID: "alice", Role: identity.RoleAdmin},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   identity.Actor
		ok     bool
	}{
		{"valid bearer", "Bearer s3cret", identity.Actor{ID: "alice", Role: identity.RoleAdmin}, true},
		{"case insensitive scheme", "bearer s3cret", identity.Actor{ID: "alice", Role: identity.RoleAdmin}, true},
		{"wrong token", "Bearer nope", identity.Actor{}, false},
		{"basic scheme", "Basic s3cret", identity.Actor{}, false},
		{"missing header", "", identity.Actor{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := res.CurrentActor(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeaderResolverAndChain(t *testing.T) {
	t.Parallel()

	tokens, err := identity.NewTokenResolver(map[string]identity.Actor{"tok": {ID: "alice", Role: identity.RoleAdmin}})
	require.NoError(t, err)
	res := identity.Chain(tokens, identity.HeaderResolver{IDHeader: "X-Actor-Id", RoleHeader: "X-Actor-Role"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-Id", "carol")
	req.Header.Set("X-Actor-Role", "editor")
	a, ok := res.CurrentActor(req)
	require.True(t, ok)
	assert.Equal(t, identity.Actor{ID: "carol", Role: identity.RoleEditor}, a)

	req.Header.Set("X-Actor-Role", "root")
	_, ok = res.CurrentActor(req)
	assert.False(t, ok)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	_, err := identity.Authorize(context.Background(), identity.RoleAdmin)
	require.ErrorIs(t, err, core.ErrUnauthorized)

	editor := identity.WithActor(context.Background(), identity.Actor{ID: "bob", Role: identity.RoleEditor})
	_, err = identity.Authorize(editor, identity.RoleAdmin)
	require.ErrorIs(t, err, core.ErrForbidden)

	a, err := identity.Authorize(editor, identity.RoleAdmin, identity.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, "bob", a.ID)

	id, role, ok := identity.Extract(editor)
	assert.True(t, ok)
	assert.Equal(t, "bob", id)
	assert.Equal(t, "Editor", role)
}

func TestMiddlewareAndRequire(t *testing.T) {
	t.Parallel()

	tokens, err := identity.NewTokenResolver(map[string]identity.Actor{
		"admin-token":  {ID: "alice", Role: identity.RoleAdmin},
		"editor-token": {ID: "bob", Role: identity.RoleEditor},
	})
	require.NoError(t, err)

	h := identity.Middleware(tokens)(handler.Wrap(
		func(ctx handler.Context, _ struct{}) handler.Response {
			a, _ := identity.FromContext(ctx)
			return handler.JSON(a)
		},
		handler.WithDecorators(identity.Require[handler.Context, struct{}](identity.RoleAdmin)),
	))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"admin", "admin-token", http.StatusOK},
		{"editor", "editor-token", http.StatusForbidden},
		{"anonymous", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/comments/pending", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
