package identity

import (
	"context"
	"net/http"
	"slices"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/handler"
)

// Middleware resolves the actor of every request and stores it in the
// context. Anonymous requests pass through unchanged.
func Middleware(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a, ok := res.CurrentActor(r); ok {
				r = r.WithContext(WithActor(r.Context(), a))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize returns the actor in ctx if it holds one of roles.
func Authorize(ctx context.Context, roles ...Role) (Actor, error) {
	a, ok := FromContext(ctx)
	if !ok {
		return Actor{}, core.ErrUnauthorized
	}
	return a, Check(a, roles...)
}

// Check reports whether a holds one of roles.
func Check(a Actor, roles ...Role) error {
	if a.ID == "" {
		return core.ErrUnauthorized
	}
	if !slices.Contains(roles, a.Role) {
		return core.ErrForbidden
	}
	return nil
}

// Require is a handler decorator that rejects callers without one of roles.
func Require[C handler.Context, R any](roles ...Role) handler.Decorator[C, R] {
	return func(next handler.HandlerFunc[C, R]) handler.HandlerFunc[C, R] {
		return func(ctx C, req R) handler.Response {
			if _, err := Authorize(ctx, roles...); err != nil {
				return handler.Error(err)
			}
			return next(ctx, req)
		}
	}
}
