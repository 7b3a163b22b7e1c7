// Package sanitizer cleans untrusted text before it is stored or rendered.
//
// Every helper is a pure function: no I/O, no global mutable state, and no
// errors. Failure is reported through the second return value (for the URL and
// e-mail helpers) or by an empty result.
//
// The package is grouped into a few areas:
//
//   - Markup – StripHTML removes every tag and entity-encoded payload and returns
//     plain text. SanitizeRichText keeps a small set of safe formatting
//     elements for long-form article bodies.
//
//   - Format – SanitizeURL accepts absolute http/https URLs only, SanitizeEmail
//     accepts a pragmatic subset of RFC 5322 addresses and normalises case.
//
//   - Text – CleanText and CleanLine combine markup stripping with control
//     character removal and whitespace normalisation. They are the helpers used
//     right before a value is persisted.
//
// Each helper returns a Text value that carries the cleaned string and whether
// the input had to be changed:
//
//	out := sanitizer.StripHTML(`<b>hello</b><script>alert(1)</script>`)
//	// out.Value == "hello", out.Altered == true
//
//	link, ok := sanitizer.SanitizeURL("javascript:alert(1)")
//	// ok == false, link.Value == ""
//
// StripHTML is idempotent: StripHTML(StripHTML(x).Value) == StripHTML(x).
//
// All helpers are safe for concurrent use.
package sanitizer
