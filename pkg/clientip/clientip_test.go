package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/pkg/clientip"
)

func TestResolver_GetIP(t *testing.T) {
	t.Parallel()

	trusted, err := clientip.NewResolver([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)
	untrusted, err := clientip.NewResolver(nil)
	require.NoError(t, err)

	tests := []struct {
		name       string
		resolver   *clientip.Resolver
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "peer address without proxies",
			resolver:   untrusted,
			remoteAddr: "203.0.113.7:5050",
			expected:   "203.0.113.7",
		},
		{
			name:       "spoofed headers ignored from untrusted peer",
			resolver:   untrusted,
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4", "CF-Connecting-IP": "5.6.7.8"},
			remoteAddr: "203.0.113.7:5050",
			expected:   "203.0.113.7",
		},
		{
			name:       "cloudflare header from trusted proxy",
			resolver:   trusted,
			headers:    map[string]string{"CF-Connecting-IP": "198.51.100.178", "X-Forwarded-For": "1.2.3.4"},
			remoteAddr: "10.1.2.3:443",
			expected:   "198.51.100.178",
		},
		{
			name:       "rightmost untrusted forwarded hop",
			resolver:   trusted,
			headers:    map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.9, 10.0.0.5"},
			remoteAddr: "10.1.2.3:443",
			expected:   "198.51.100.9",
		},
		{
			name:       "real ip header",
			resolver:   trusted,
			headers:    map[string]string{"X-Real-IP": "198.51.100.10"},
			remoteAddr: "192.168.1.1:80",
			expected:   "198.51.100.10",
		},
		{
			name:       "invalid headers fall back to peer",
			resolver:   trusted,
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			remoteAddr: "10.1.2.3:443",
			expected:   "10.1.2.3",
		},
		{
			name:       "ipv6 peer",
			resolver:   untrusted,
			remoteAddr: "[2001:db8::1]:8080",
			expected:   "2001:db8::1",
		},
		{
			name:       "mapped ipv4 is unmapped",
			resolver:   untrusted,
			remoteAddr: "[::ffff:203.0.113.7]:8080",
			expected:   "203.0.113.7",
		},
		{
			name:       "garbage remote addr",
			resolver:   untrusted,
			remoteAddr: "nonsense",
			expected:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, tt.resolver.GetIP(req))
		})
	}
}

func TestNewResolver_InvalidProxy(t *testing.T) {
	t.Parallel()

	_, err := clientip.NewResolver([]string{"10.0.0.0/99"})
	require.ErrorIs(t, err, clientip.ErrInvalidProxy)

	_, err = clientip.NewResolver([]string{"proxy.local"})
	require.ErrorIs(t, err, clientip.ErrInvalidProxy)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	res, err := clientip.NewResolver(nil)
	require.NoError(t, err)

	var ip, ua string
	h := res.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = clientip.FromContext(r.Context())
		ua = clientip.UserAgentFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	req.Header.Set("User-Agent", "Mozilla/5.0 "+strings.Repeat("x", 1000))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", ip)
	assert.Len(t, ua, 512)

	got, ok := clientip.ExtractIP(clientip.WithIP(req.Context(), "1.1.1.1"))
	assert.True(t, ok)
	assert.Equal(t, "1.1.1.1", got)
}
