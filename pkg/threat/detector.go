package threat

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const defaultDecodeRounds = 2

// Detector classifies inputs. It is immutable after construction and safe for
// concurrent use.
type Detector struct {
	sqli         family
	xss          family
	traversal    family
	userAgents   []string
	decodeRounds int
}

// Option configures a Detector.
type Option func(*config)

type config struct {
	rules        Rules
	decodeRounds int
}

// WithRules appends extra signatures and scanner user agents.
func WithRules(r Rules) Option {
	return func(c *config) {
		c.rules = c.rules.Merge(r)
	}
}

// WithDecodeRounds sets how many percent-decoding rounds are applied before
// matching. Negative values are ignored.
func WithDecodeRounds(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.decodeRounds = n
		}
	}
}

// New builds a Detector with the default signature set plus any rules passed
// through options.
func New(opts ...Option) (*Detector, error) {
	cfg := &config{decodeRounds: defaultDecodeRounds}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &Detector{
		sqli:         family{kind: SQLInjectionSuspected, signatures: defaultSQLInjection()},
		xss:          family{kind: XSSSuspected, signatures: defaultXSS()},
		traversal:    family{kind: PathTraversalSuspected, signatures: defaultPathTraversal()},
		userAgents:   slices.Clone(defaultUserAgents),
		decodeRounds: cfg.decodeRounds,
	}

	extra := []struct {
		f        *family
		prefix   string
		patterns []string
	}{
		{&d.sqli, "custom_sql", cfg.rules.SQLInjection},
		{&d.xss, "custom_xss", cfg.rules.XSS},
		{&d.traversal, "custom_traversal", cfg.rules.PathTraversal},
	}
	for _, e := range extra {
		for _, p := range e.patterns {
			sig, err := compileSignature(e.prefix, p)
			if err != nil {
				return nil, err
			}
			e.f.signatures = append(e.f.signatures, sig)
		}
	}

	for _, ua := range cfg.rules.UserAgents {
		if ua = strings.ToLower(strings.TrimSpace(ua)); ua != "" {
			d.userAgents = append(d.userAgents, ua)
		}
	}

	return d, nil
}

// MustNew is like New but panics on invalid rules.
func MustNew(opts ...Option) *Detector {
	d, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Classify evaluates s against all families in priority order:
// SQL injection, then XSS, then path traversal.
func (d *Detector) Classify(s string) Verdict {
	if s == "" {
		return clean
	}
	return d.match(d.variants(s), d.sqli, d.xss, d.traversal)
}

// ClassifyXSS evaluates s against the XSS family only. Used for free-form
// body content where SQL keywords are ordinary words.
func (d *Detector) ClassifyXSS(s string) Verdict {
	if s == "" {
		return clean
	}
	return d.match(d.variants(s), d.xss)
}

// ClassifyPath evaluates a request path against the path traversal family.
func (d *Detector) ClassifyPath(path string) Verdict {
	if path == "" {
		return clean
	}
	return d.match(d.variants(path), d.traversal)
}

// ClassifyUserAgent flags empty user agents and known scanner signatures.
func (d *Detector) ClassifyUserAgent(ua string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(ua))
	if normalized == "" {
		return Verdict{Kind: SuspiciousHeader, Signature: "empty_user_agent"}
	}
	for _, tool := range d.userAgents {
		if strings.Contains(normalized, tool) {
			return Verdict{Kind: SuspiciousHeader, Signature: "scanner_user_agent"}
		}
	}
	return clean
}

// Evaluate classifies in according to its source. Paths are only checked for
// traversal. User-Agent headers are checked for scanners first and then like
// any other header.
func (d *Detector) Evaluate(in Input) Verdict {
	switch in.Source {
	case SourcePath:
		return d.ClassifyPath(in.Value)
	case SourceHeader:
		if strings.EqualFold(in.Name, "User-Agent") {
			if v := d.ClassifyUserAgent(in.Value); !v.IsClean() {
				return v
			}
		}
	}
	return d.Classify(in.Value)
}

func (d *Detector) match(variants []string, families ...family) Verdict {
	for _, f := range families {
		for _, v := range variants {
			if name, ok := f.match(v); ok {
				return Verdict{Kind: f.kind, Signature: name}
			}
		}
	}
	return clean
}

// variants returns the distinct forms of s that are matched: the raw value,
// its NFKC folding and each percent-decoding round.
func (d *Detector) variants(s string) []string {
	out := make([]string, 0, 2+d.decodeRounds)
	add := func(v string) {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	add(s)
	cur := norm.NFKC.String(s)
	add(cur)
	for range d.decodeRounds {
		decoded := percentDecode(cur)
		if decoded == cur {
			break
		}
		cur = norm.NFKC.String(decoded)
		add(cur)
	}
	return out
}

// percentDecode unescapes every valid %XX triplet and keeps malformed escapes
// literally, so a stray '%' cannot hide an encoded payload next to it.
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
