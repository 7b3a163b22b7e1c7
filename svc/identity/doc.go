// Package identity resolves the actor behind a request and authorizes it.
//
// A Resolver maps a request to an Actor (id and role). Middleware stores the
// resolved actor in the request context; it never rejects a request on its
// own. Authorization happens where the privilege is needed:
//
//	actor, err := identity.Authorize(ctx, identity.RoleAdmin)
//	// err is core.ErrUnauthorized without an actor, core.ErrForbidden
//	// when the role does not match.
//
// Two resolvers are provided: TokenResolver for static bearer tokens and
// HeaderResolver for deployments behind an authenticating gateway.
package identity
