package threat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/pkg/threat"
)

func TestDetector_Classify(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()

	tests := []struct {
		name  string
		input string
		kind  threat.Kind
	}{
		{name: "tautology with comment", input: "1 OR 1=1--", kind: threat.SQLInjectionSuspected},
		{name: "union select", input: "x' UNION SELECT password FROM users", kind: threat.SQLInjectionSuspected},
		{name: "lower case keyword", input: "1; drop table comments", kind: threat.SQLInjectionSuspected},
		{name: "block comment", input: "admin'/*", kind: threat.SQLInjectionSuspected},
		{name: "script tag", input: "<script>alert(1)</script>", kind: threat.XSSSuspected},
		{name: "script tag with spaces", input: "< ScRiPt >", kind: threat.XSSSuspected},
		{name: "javascript uri", input: "javascript:alert(1)", kind: threat.XSSSuspected},
		{name: "onerror handler", input: `<img src=x onerror=alert(1)>`, kind: threat.XSSSuspected},
		{name: "onload handler", input: `<body onload = "x()">`, kind: threat.XSSSuspected},
		{name: "iframe", input: `<iframe src="//evil">`, kind: threat.XSSSuspected},
		{name: "eval call", input: "eval(atob('x'))", kind: threat.XSSSuspected},
		{name: "css expression", input: "width: expression(alert(1))", kind: threat.XSSSuspected},
		{name: "percent encoded script", input: "%3Cscript%3Ealert(1)", kind: threat.XSSSuspected},
		{name: "fullwidth script", input: "＜script＞alert(1)", kind: threat.XSSSuspected},
		{name: "unix traversal", input: "../../etc/passwd", kind: threat.PathTraversalSuspected},
		{name: "windows traversal", input: `..\..\windows\win.ini`, kind: threat.PathTraversalSuspected},
		{name: "encoded traversal", input: "%2e%2e%2fetc%2fpasswd", kind: threat.PathTraversalSuspected},
		{name: "mixed encoded traversal", input: "..%2f..%2fetc", kind: threat.PathTraversalSuspected},
		{name: "double encoded traversal", input: "%252e%252e%252fetc", kind: threat.PathTraversalSuspected},
		{name: "fullwidth traversal", input: "．．／etc", kind: threat.PathTraversalSuspected},
		{name: "sql wins over xss", input: "<script>SELECT</script>", kind: threat.SQLInjectionSuspected},
		{name: "xss wins over traversal", input: "../<script>", kind: threat.XSSSuspected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := d.Classify(tt.input)
			assert.Equal(t, tt.kind, v.Kind)
			assert.NotEmpty(t, v.Signature)
			assert.False(t, v.IsClean())
		})
	}
}

func TestDetector_ClassifyCleanCorpus(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()

	corpus := []string{
		"",
		"hello world",
		"The quick brown fox jumps over the lazy dog.",
		"price: $10, qty 3 (approx)",
		"email me at reader@example.com",
		"a selection of updates and deletes",
		"a-b c/d e.f",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
		"100% organic",
		"page=2&sort=newest",
		"1 + 1 = 2",
		"Dots... and more dots.",
	}

	for _, in := range corpus {
		v := d.Classify(in)
		assert.True(t, v.IsClean(), "input %q classified as %s/%s", in, v.Kind, v.Signature)
		assert.Equal(t, threat.Clean, v.Kind)
	}
}

func TestDetector_ClassifyLargeInput(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()
	in := strings.Repeat("a.", 256*1024) + "../"
	assert.Equal(t, threat.PathTraversalSuspected, d.Classify(in).Kind)
	assert.True(t, d.Classify(strings.Repeat("-a", 256*1024)).IsClean())
}

func TestDetector_ClassifyXSS(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()
	assert.True(t, d.ClassifyXSS("please select and update the docs -- thanks").IsClean())
	assert.Equal(t, threat.XSSSuspected, d.ClassifyXSS("<script>x</script>").Kind)
}

func TestDetector_ClassifyPath(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()
	assert.True(t, d.ClassifyPath("/articles/select-update").IsClean())
	assert.Equal(t, threat.PathTraversalSuspected, d.ClassifyPath("/static/../../etc/passwd").Kind)
	assert.Equal(t, threat.PathTraversalSuspected, d.ClassifyPath("/static/%2e%2e/%2e%2e/etc").Kind)
}

func TestDetector_ClassifyUserAgent(t *testing.T) {
	t.Parallel()

	d := threat.MustNew(threat.WithRules(threat.Rules{UserAgents: []string{"EvilBot"}}))

	tests := []struct {
		name      string
		ua        string
		signature string
	}{
		{name: "empty", ua: "", signature: "empty_user_agent"},
		{name: "whitespace", ua: "   ", signature: "empty_user_agent"},
		{name: "sqlmap", ua: "sqlmap/1.7.2#stable (https://sqlmap.org)", signature: "scanner_user_agent"},
		{name: "nikto", ua: "Mozilla/5.00 (Nikto/2.1.6)", signature: "scanner_user_agent"},
		{name: "nmap", ua: "Mozilla/5.0 (compatible; Nmap Scripting Engine)", signature: "scanner_user_agent"},
		{name: "masscan", ua: "masscan/1.3", signature: "scanner_user_agent"},
		{name: "nessus", ua: "Nessus SOAP", signature: "scanner_user_agent"},
		{name: "custom", ua: "evilbot/2.0", signature: "scanner_user_agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := d.ClassifyUserAgent(tt.ua)
			assert.Equal(t, threat.SuspiciousHeader, v.Kind)
			assert.Equal(t, tt.signature, v.Signature)
		})
	}

	assert.True(t, d.ClassifyUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) Safari/605.1.15").IsClean())
}

func TestDetector_Evaluate(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()

	assert.Equal(t, threat.SuspiciousHeader,
		d.Evaluate(threat.Input{Source: threat.SourceHeader, Name: "User-Agent", Value: "sqlmap"}).Kind)
	assert.Equal(t, threat.XSSSuspected,
		d.Evaluate(threat.Input{Source: threat.SourceHeader, Name: "Referer", Value: "javascript:alert(1)"}).Kind)
	assert.True(t,
		d.Evaluate(threat.Input{Source: threat.SourcePath, Name: "path", Value: "/search/select"}).IsClean())
	assert.Equal(t, threat.SQLInjectionSuspected,
		d.Evaluate(threat.Input{Source: threat.SourceQuery, Name: "q", Value: "1 OR 1=1--"}).Kind)
}

func TestDetector_WithDecodeRounds(t *testing.T) {
	t.Parallel()

	d := threat.MustNew(threat.WithDecodeRounds(0))
	assert.True(t, d.Classify("%3Cscript%3E").IsClean())
}

func TestDetector_ClassifyMalformedEscapes(t *testing.T) {
	t.Parallel()

	d := threat.MustNew()
	tests := []struct {
		name  string
		input string
		want  threat.Kind
	}{
		{"stray percent before payload", "100% %3Cscript%3Ealert(1)", threat.XSSSuspected},
		{"truncated escape after payload", "%3Ciframe src=x%", threat.XSSSuspected},
		{"invalid hex next to traversal", "%zz%2e%2e%2fetc%2fpasswd", threat.PathTraversalSuspected},
		{"double encoded with stray percent", "50%% off %253Cscript%253E", threat.XSSSuspected},
		{"plain percent text", "save 20% today", threat.Clean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, d.Classify(tt.input).Kind)
		})
	}
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	t.Run("adds custom signatures", func(t *testing.T) {
		t.Parallel()
		rules, err := threat.ParseRules([]byte(`
xss:
  - "<\\s*svg"
sql_injection:
  - "\\bwaitfor\\s+delay\\b"
path_traversal:
  - "/etc/passwd"
user_agents:
  - zgrab
safe_headers:
  - X-Signature
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"X-Signature"}, rules.SafeHeaders)

		d, err := threat.New(threat.WithRules(rules))
		require.NoError(t, err)

		v := d.Classify("<svg/x>")
		assert.Equal(t, threat.XSSSuspected, v.Kind)
		assert.Equal(t, "custom_xss", v.Signature)
		assert.Equal(t, threat.SQLInjectionSuspected, d.Classify("'; WAITFOR DELAY '0:0:5'").Kind)
		assert.Equal(t, threat.PathTraversalSuspected, d.ClassifyPath("/etc/passwd").Kind)
		assert.Equal(t, threat.SuspiciousHeader, d.ClassifyUserAgent("zgrab/0.x").Kind)
	})

	t.Run("rejects invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := threat.ParseRules([]byte("xss:\n  - \"(\"\n"))
		require.ErrorIs(t, err, threat.ErrInvalidPattern)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := threat.ParseRules([]byte("xss: [unclosed"))
		require.ErrorIs(t, err, threat.ErrParseRules)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := threat.LoadRules("/nonexistent/rules.yaml")
		require.ErrorIs(t, err, threat.ErrReadRules)
	})
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := threat.New(threat.WithRules(threat.Rules{SQLInjection: []string{"[a-"}}))
	require.ErrorIs(t, err, threat.ErrInvalidPattern)
	assert.Panics(t, func() {
		threat.MustNew(threat.WithRules(threat.Rules{XSS: []string{"(("}}))
	})
}
