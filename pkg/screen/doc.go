// Package screen is the boundary gate that inspects a whole request before it
// is routed.
//
// Checks run in a fixed order: query parameters, then headers, then the path.
// The first suspicious input rejects the request with a stable code
// (INVALID_INPUT, INVALID_HEADERS or INVALID_PATH). The matched signature is
// logged and audited but never returned to the client.
//
//	s := screen.New(detector, screen.WithAuditSink(auditLogger), screen.WithLogger(log))
//	r.Use(s.Middleware)
package screen
