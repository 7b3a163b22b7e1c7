package screen

import (
	"log/slog"
	"maps"
	"net"
	"net/http"
	"net/url"
	"slices"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
)

// ActionRejected is the audit action recorded for every screened-out request.
const ActionRejected = "request.rejected"

// Result is the outcome of screening a request.
type Result struct {
	Passed bool
	// Err is the client-facing rejection. Zero when Passed.
	Err core.Error
	// Reason is the matched signature, for logs and audit only.
	Reason  string
	Input   threat.Input
	Verdict threat.Verdict
}

// Code returns the stable rejection code, or "" when the request passed.
func (r Result) Code() string {
	if r.Passed {
		return ""
	}
	return r.Err.Code()
}

var pass = Result{Passed: true, Verdict: threat.Verdict{Kind: threat.Clean}}

// Screen inspects requests with a threat.Detector. It holds no mutable state
// and is safe for concurrent use.
type Screen struct {
	detector    *threat.Detector
	safeHeaders map[string]struct{}
	sink        audit.Sink
	log         *slog.Logger
}

// Option configures a Screen.
type Option func(*screenConfig)

type screenConfig struct {
	safeHeaders []string
	sink        audit.Sink
	log         *slog.Logger
}

// WithSafeHeaders adds header names that are not inspected.
func WithSafeHeaders(names ...string) Option {
	return func(c *screenConfig) { c.safeHeaders = append(c.safeHeaders, names...) }
}

func WithAuditSink(sink audit.Sink) Option {
	return func(c *screenConfig) {
		if sink != nil {
			c.sink = sink
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *screenConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Screen backed by detector. It panics if detector is nil.
func New(detector *threat.Detector, opts ...Option) *Screen {
	if detector == nil {
		panic("screen: detector cannot be nil")
	}
	cfg := &screenConfig{sink: audit.Discard, log: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Screen{
		detector:    detector,
		safeHeaders: newHeaderSet(cfg.safeHeaders),
		sink:        cfg.sink,
		log:         cfg.log.With(logger.Component("screen")),
	}
}

// Check classifies r without side effects.
func (s *Screen) Check(r *http.Request) Result {
	if res := s.checkQuery(r); !res.Passed {
		return res
	}
	if res := s.checkHeaders(r); !res.Passed {
		return res
	}
	return s.checkPath(r)
}

// Screen is Check plus one log line and one audit event on rejection.
func (s *Screen) Screen(r *http.Request) Result {
	res := s.Check(r)
	if !res.Passed {
		s.report(r, res)
	}
	return res
}

// Middleware rejects screened-out requests with the error envelope before
// next is invoked.
func (s *Screen) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if res := s.Screen(r); !res.Passed {
			handler.WriteError(w, r, res.Err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Screen) checkQuery(r *http.Request) Result {
	// ParseQuery keeps every pair it could decode. Pairs it could not decode
	// are invisible to handlers too, but the raw string is still classified
	// so a broken escape cannot hide a payload next to it.
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		in := threat.Input{Source: threat.SourceQuery, Value: r.URL.RawQuery}
		if v := s.detector.Evaluate(in); !v.IsClean() {
			return reject(core.ErrInvalidInput, in, v)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(values)) {
		for _, value := range values[name] {
			in := threat.Input{Source: threat.SourceQuery, Name: name, Value: value}
			if v := s.detector.Evaluate(in); !v.IsClean() {
				return reject(core.ErrInvalidInput, in, v)
			}
		}
	}
	return pass
}

func (s *Screen) checkHeaders(r *http.Request) Result {
	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		if name == userAgentHeader || s.skipHeader(name) {
			continue
		}
		for _, value := range r.Header[name] {
			in := threat.Input{Source: threat.SourceHeader, Name: name, Value: value}
			if v := s.detector.Evaluate(in); !v.IsClean() {
				return reject(core.ErrInvalidHeaders, in, v)
			}
		}
	}

	// A missing User-Agent is evaluated as empty, which is itself suspicious.
	in := threat.Input{Source: threat.SourceHeader, Name: userAgentHeader, Value: r.Header.Get(userAgentHeader)}
	if v := s.detector.Evaluate(in); !v.IsClean() {
		return reject(core.ErrInvalidHeaders, in, v)
	}
	return pass
}

func (s *Screen) checkPath(r *http.Request) Result {
	for _, p := range []string{r.URL.Path, r.URL.EscapedPath()} {
		in := threat.Input{Source: threat.SourcePath, Name: "path", Value: p}
		if v := s.detector.Evaluate(in); !v.IsClean() {
			return reject(core.ErrInvalidPath, in, v)
		}
	}
	return pass
}

func reject(err core.Error, in threat.Input, v threat.Verdict) Result {
	return Result{Err: err, Reason: v.Signature, Input: in, Verdict: v}
}

func (s *Screen) report(r *http.Request, res Result) {
	ctx := r.Context()
	ip := clientip.FromContext(ctx)
	if ip == "" {
		ip = remoteHost(r.RemoteAddr)
	}

	s.log.WarnContext(ctx, "request rejected",
		logger.Verdict(string(res.Verdict.Kind), res.Verdict.Signature),
		slog.String("code", res.Err.Code()),
		slog.String("source", string(res.Input.Source)),
		slog.String("field", res.Input.Name),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	s.sink.Record(ctx, audit.NewEvent(ActionRejected,
		audit.WithRejection(res.Err.Code()),
		audit.WithIP(ip),
		audit.WithUserAgent(r.UserAgent()),
		audit.WithMetadata(map[string]any{
			"category":  string(res.Verdict.Kind),
			"signature": res.Verdict.Signature,
			"source":    string(res.Input.Source),
			"field":     res.Input.Name,
			"method":    r.Method,
			"path":      r.URL.Path,
		}),
	))
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
