package ratelimiter

import (
	"hash/fnv"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
)

// ActionLimited is the audit action recorded for a denied request.
const ActionLimited = "request.rate_limited"

// maxKeyLength bounds stored keys; longer composite keys are hashed.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

// ByClientIP keys on the client IP resolved by clientip.Middleware, falling
// back to the peer address.
func ByClientIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ByRoute keys on the method and path.
func ByRoute(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

// Composite combines key functions. Keys longer than 64 bytes are hashed
// with FNV-1a.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	log  *slog.Logger
	sink audit.Sink
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAuditSink records one event per denied request.
func WithAuditSink(s audit.Sink) MiddlewareOption {
	return func(c *middlewareConfig) {
		if s != nil {
			c.sink = s
		}
	}
}

// Middleware limits requests per key. Store failures are logged and the
// request is let through.
func Middleware(b *Bucket, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{log: logger.Discard(), sink: audit.Discard}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log.With(logger.Component("ratelimiter"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := b.Allow(r.Context(), key)
			if err != nil {
				log.ErrorContext(r.Context(), "rate limit check failed", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				retryAfter := int(math.Ceil(result.RetryAfter().Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(1, retryAfter)))

				cfg.sink.Record(r.Context(), audit.NewEvent(ActionLimited,
					audit.WithRejection(core.ErrTooManyRequests.Code()),
					audit.WithIP(ByClientIP(r)),
					audit.WithMeta("method", r.Method),
					audit.WithMeta("path", r.URL.Path),
				))
				log.WarnContext(r.Context(), "request rate limited",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				handler.WriteError(w, r, core.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
