// Package requestid assigns every request a trace identifier.
//
// The middleware reuses a well-formed X-Request-ID header, otherwise the trace
// id of a W3C traceparent header, otherwise a fresh UUID. The id is echoed in
// the X-Request-ID response header, stored in the request context and
// surfaced as traceId in error envelopes and audit events.
package requestid
