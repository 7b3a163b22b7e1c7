// Package threat classifies untrusted strings against known attack signatures.
//
// A Detector holds three signature families evaluated in a fixed priority
// order: SQL injection, cross-site scripting and path traversal. The first
// family with a match determines the verdict. Every input is checked as
// received, after Unicode NFKC folding, and after up to two rounds of
// percent-decoding, so fullwidth and double-encoded variants are caught too.
//
// All patterns are compiled with Go's RE2 engine, so matching time is linear in
// the input length regardless of the signature set.
//
//	d := threat.MustNew()
//	v := d.Classify("1 OR 1=1--")
//	// v.Kind == threat.SQLInjectionSuspected, v.Signature == "sql_comment"
//
// Extra signatures can be loaded from a YAML file with LoadRules and passed in
// through WithRules. Verdict signatures are meant for audit records only and
// must never be echoed back to the client.
package threat
