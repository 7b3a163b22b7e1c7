package requestid

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	Header            = "X-Request-ID"
	TraceparentHeader = "traceparent"
	maxIDLength       = 128
)

var (
	validIDRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	traceparentRegex = regexp.MustCompile(`^[0-9a-f]{2}-([0-9a-f]{32})-[0-9a-f]{16}-[0-9a-f]{2}$`)
)

// Middleware resolves the request id and stores it in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Resolve(r)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

// Resolve picks the id for r without touching the context.
func Resolve(r *http.Request) string {
	if id := r.Header.Get(Header); isValidID(id) {
		return id
	}
	if id, ok := traceID(r.Header.Get(TraceparentHeader)); ok {
		return id
	}
	return uuid.NewString()
}

func isValidID(id string) bool {
	return id != "" && len(id) <= maxIDLength && validIDRegex.MatchString(id)
}

// traceID extracts the trace-id field of a version-00 traceparent header.
// All-zero trace ids are invalid per the W3C spec.
func traceID(header string) (string, bool) {
	m := traceparentRegex.FindStringSubmatch(strings.TrimSpace(strings.ToLower(header)))
	if m == nil || strings.Trim(m[1], "0") == "" {
		return "", false
	}
	return m[1], true
}
