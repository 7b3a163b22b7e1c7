package threat

// Kind is the outcome of classifying an input.
type Kind string

const (
	Clean                  Kind = "clean"
	SQLInjectionSuspected  Kind = "sql_injection_suspected"
	XSSSuspected           Kind = "xss_suspected"
	PathTraversalSuspected Kind = "path_traversal_suspected"
	SuspiciousHeader       Kind = "suspicious_header"
)

// Verdict is the classification of a single input.
type Verdict struct {
	Kind Kind
	// Signature names the matched pattern category. Empty for clean input.
	Signature string
}

// IsClean reports whether no signature matched.
func (v Verdict) IsClean() bool {
	return v.Kind == "" || v.Kind == Clean
}

// Source identifies where an input came from.
type Source string

const (
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourcePath   Source = "path"
	SourceBody   Source = "body"
)

// Input is an untrusted value together with its origin.
type Input struct {
	Source Source
	Name   string
	Value  string
}

var clean = Verdict{Kind: Clean}
