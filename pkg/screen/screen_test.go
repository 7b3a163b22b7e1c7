package screen_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/screen"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

func newRequest(target string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", browserUA)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	return req
}

func TestScreen_Check(t *testing.T) {
	t.Parallel()

	s := screen.New(threat.MustNew(), screen.WithSafeHeaders("X-Editor-Note"))

	tests := []struct {
		name    string
		target  string
		headers map[string]string
		code    string
		kind    threat.Kind
		source  threat.Source
		field   string
	}{
		{
			name:    "clean request",
			target:  "/articles?page=2&q=hello+world",
			headers: map[string]string{"Accept": "application/json", "Referer": "https://blog.example.com/articles"},
		},
		{
			name:   "sql comment in query",
			target: "/articles?q=1%20OR%201=1--",
			code:   "INVALID_INPUT",
			kind:   threat.SQLInjectionSuspected,
			source: threat.SourceQuery,
			field:  "q",
		},
		{
			name:   "script in query",
			target: "/articles?q=%3Cscript%3Ealert(1)%3C/script%3E",
			code:   "INVALID_INPUT",
			kind:   threat.XSSSuspected,
			source: threat.SourceQuery,
			field:  "q",
		},
		{
			name:   "double encoded script in query",
			target: "/articles?q=%253Cscript%253E",
			code:   "INVALID_INPUT",
			kind:   threat.XSSSuspected,
			source: threat.SourceQuery,
			field:  "q",
		},
		{
			name:    "payload in custom header",
			target:  "/articles",
			headers: map[string]string{"X-Forwarded-Host": "<script>alert(1)</script>"},
			code:    "INVALID_HEADERS",
			kind:    threat.XSSSuspected,
			source:  threat.SourceHeader,
			field:   "X-Forwarded-Host",
		},
		{
			name:    "missing user agent",
			target:  "/articles",
			headers: map[string]string{"User-Agent": ""},
			code:    "INVALID_HEADERS",
			kind:    threat.SuspiciousHeader,
			source:  threat.SourceHeader,
			field:   "User-Agent",
		},
		{
			name:    "scanner user agent",
			target:  "/articles",
			headers: map[string]string{"User-Agent": "sqlmap/1.7.2#stable (https://sqlmap.org)"},
			code:    "INVALID_HEADERS",
			kind:    threat.SuspiciousHeader,
			source:  threat.SourceHeader,
			field:   "User-Agent",
		},
		{
			name:    "structural headers are not inspected",
			target:  "/articles",
			headers: map[string]string{"Cookie": "session=abc--def", "Authorization": "Bearer a/*b", "Sec-Ch-Ua": `"Chromium";v="126"--`},
		},
		{
			name:    "configured safe header",
			target:  "/articles",
			headers: map[string]string{"X-Editor-Note": "drop table later -- fix"},
		},
		{
			name:   "path traversal",
			target: "/files/../etc/passwd",
			code:   "INVALID_PATH",
			kind:   threat.PathTraversalSuspected,
			source: threat.SourcePath,
			field:  "path",
		},
		{
			name:   "encoded path traversal",
			target: "/files/%2e%2e%2fetc/passwd",
			code:   "INVALID_PATH",
			kind:   threat.PathTraversalSuspected,
			source: threat.SourcePath,
			field:  "path",
		},
		{
			name:   "sql keywords in path are not checked",
			target: "/articles/select-the-best",
		},
		{
			name:    "query is checked before headers",
			target:  "/articles?q=union+select",
			headers: map[string]string{"User-Agent": ""},
			code:    "INVALID_INPUT",
			kind:    threat.SQLInjectionSuspected,
			source:  threat.SourceQuery,
			field:   "q",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := s.Check(newRequest(tt.target, tt.headers))
			if tt.code == "" {
				assert.True(t, res.Passed, "unexpected rejection: %+v", res)
				assert.Empty(t, res.Code())
				return
			}
			require.False(t, res.Passed)
			assert.Equal(t, tt.code, res.Code())
			assert.Equal(t, tt.kind, res.Verdict.Kind)
			assert.Equal(t, tt.source, res.Input.Source)
			assert.Equal(t, tt.field, res.Input.Name)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestScreen_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("rejection short-circuits and audits once", func(t *testing.T) {
		t.Parallel()
		sink := &audit.Recorder{}
		s := screen.New(threat.MustNew(), screen.WithAuditSink(sink))

		invoked := false
		h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			invoked = true
		}))

		req := newRequest("/articles?q=1%20OR%201=1--", nil)
		req.RemoteAddr = "203.0.113.9:4444"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.False(t, invoked)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var env handler.ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		assert.NotContains(t, rec.Body.String(), "sql_comment")
		assert.NotContains(t, strings.ToLower(rec.Body.String()), "sql")

		events := sink.Events()
		require.Len(t, events, 1)
		e := events[0]
		assert.Equal(t, screen.ActionRejected, e.Action)
		assert.Equal(t, audit.ResultRejected, e.Result)
		assert.Equal(t, "INVALID_INPUT", e.Reason)
		assert.Equal(t, "203.0.113.9", e.IP)
		assert.Equal(t, string(threat.SQLInjectionSuspected), e.Metadata["category"])
		assert.Equal(t, "sql_comment", e.Metadata["signature"])
		assert.Equal(t, "q", e.Metadata["field"])
	})

	t.Run("clean request reaches handler without audit", func(t *testing.T) {
		t.Parallel()
		sink := &audit.Recorder{}
		s := screen.New(threat.MustNew(), screen.WithAuditSink(sink))

		h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("/articles?page=1", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Empty(t, sink.Events())
	})

	t.Run("body is not inspected", func(t *testing.T) {
		t.Parallel()
		s := screen.New(threat.MustNew())

		req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"content":"<script>"}`))
		req.Header.Set("User-Agent", browserUA)
		req.Header.Set("Content-Type", "application/json")
		assert.True(t, s.Check(req).Passed)
	})
}

func TestNew_PanicsWithoutDetector(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { screen.New(nil) })
}
