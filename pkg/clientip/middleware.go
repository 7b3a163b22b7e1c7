package clientip

import (
	"net/http"
	"unicode/utf8"
)

const maxUserAgentLength = 512

// Middleware stores the resolved client IP and user agent in the request
// context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithIP(r.Context(), res.GetIP(r))
		ctx = WithUserAgent(ctx, truncate(r.UserAgent(), maxUserAgentLength))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
