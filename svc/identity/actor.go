package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role is the privilege level of an actor.
type Role string

const (
	// RoleAdmin moderates comments and publishes articles.
	RoleAdmin Role = "Admin"
	// RoleEditor authors and revises articles.
	RoleEditor Role = "Editor"
)

var ErrUnknownRole = errors.New("identity: unknown role")

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, error) {
	switch {
	case strings.EqualFold(s, string(RoleAdmin)):
		return RoleAdmin, nil
	case strings.EqualFold(s, string(RoleEditor)):
		return RoleEditor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Actor is an authenticated caller.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type actorKey struct{}

// WithActor stores a in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor stored by Middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && a.ID != ""
}

// Extract adapts FromContext to the audit logger actor extractor.
func Extract(ctx context.Context) (id, role string, ok bool) {
	a, ok := FromContext(ctx)
	if !ok {
		return "", "", false
	}
	return a.ID, string(a.Role), true
}
