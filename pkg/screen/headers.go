package screen

import (
	"net/http"
	"strings"
)

// structuralHeaders carry protocol or credential data rather than free-form
// user input and are not inspected. User-Agent is always inspected.
var structuralHeaders = []string{
	"Accept",
	"Accept-Charset",
	"Accept-Encoding",
	"Accept-Language",
	"Authorization",
	"Cache-Control",
	"Connection",
	"Content-Length",
	"Content-Type",
	"Cookie",
	"Dnt",
	"If-Match",
	"If-Modified-Since",
	"If-None-Match",
	"If-Unmodified-Since",
	"Pragma",
	"Priority",
	"Te",
	"Traceparent",
	"Tracestate",
	"Upgrade-Insecure-Requests",
	"X-Request-Id",
}

const userAgentHeader = "User-Agent"

func newHeaderSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(structuralHeaders)+len(extra))
	for _, h := range append(structuralHeaders, extra...) {
		if h = strings.TrimSpace(h); h != "" {
			set[http.CanonicalHeaderKey(h)] = struct{}{}
		}
	}
	return set
}

func (s *Screen) skipHeader(name string) bool {
	if _, ok := s.safeHeaders[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "Sec-")
}
