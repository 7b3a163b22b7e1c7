package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Resolver maps a request to its actor. ok is false for anonymous requests.
type Resolver interface {
	CurrentActor(r *http.Request) (Actor, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (Actor, bool)

func (f ResolverFunc) CurrentActor(r *http.Request) (Actor, bool) { return f(r) }

// Chain tries resolvers in order and returns the first resolved actor.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(r *http.Request) (Actor, bool) {
		for _, res := range resolvers {
			if a, ok := res.CurrentActor(r); ok {
				return a, true
			}
		}
		return Actor{}, false
	})
}

var ErrInvalidTokenSpec = errors.New("identity: invalid token spec")

type tokenEntry struct {
	digest [sha256.Size]byte
	actor  Actor
}

// TokenResolver authenticates "Authorization: Bearer <token>" against a static
// token table. Tokens are kept as SHA-256 digests and compared in constant
// time.
type TokenResolver struct {
	entries []tokenEntry
}

// NewTokenResolver builds a resolver from a token to actor map.
func NewTokenResolver(tokens map[string]Actor) (*TokenResolver, error) {
	res := &TokenResolver{}
	for token, actor := range tokens {
		if token == "" || actor.ID == "" {
			return nil, fmt.Errorf("%w: empty token or actor id", ErrInvalidTokenSpec)
		}
		if _, err := ParseRole(string(actor.Role)); err != nil {
			return nil, err
		}
		res.entries = append(res.entries, tokenEntry{digest: sha256.Sum256([]byte(token)), actor: actor})
	}
	return res, nil
}

// ParseTokens parses "token:actor-id:Role" entries.
func ParseTokens(specs []string) (map[string]Actor, error) {
	out := make(map[string]Actor, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: expected token:actor-id:Role", ErrInvalidTokenSpec)
		}
		role, err := ParseRole(parts[2])
		if err != nil {
			return nil, err
		}
		if _, dup := out[parts[0]]; dup {
			return nil, fmt.Errorf("%w: duplicate token for %s", ErrInvalidTokenSpec, parts[1])
		}
		out[parts[0]] = Actor{ID: parts[1], Role: role}
	}
	return out, nil
}

func (t *TokenResolver) CurrentActor(r *http.Request) (Actor, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Actor{}, false
	}
	digest := sha256.Sum256([]byte(strings.TrimSpace(token)))

	var (
		found Actor
		hit   int
	)
	// Every entry is compared so timing does not reveal the table position.
	for _, e := range t.entries {
		if subtle.ConstantTimeCompare(digest[:], e.digest[:]) == 1 {
			found = e.actor
			hit = 1
		}
	}
	return found, hit == 1
}

// HeaderResolver trusts actor headers set by an authenticating gateway. Only
// use it when clients cannot reach the service directly.
type HeaderResolver struct {
	IDHeader   string
	RoleHeader string
}

func (h HeaderResolver) CurrentActor(r *http.Request) (Actor, bool) {
	id := strings.TrimSpace(r.Header.Get(h.IDHeader))
	if id == "" {
		return Actor{}, false
	}
	role, err := ParseRole(strings.TrimSpace(r.Header.Get(h.RoleHeader)))
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}
