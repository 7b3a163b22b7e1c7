// Package cms mounts the HTTP surface of the service: comment submission and
// moderation, article publication, the audit trail and the health probe.
//
// Every request passes request id, client IP and security header middleware.
// Everything except /healthz is then screened for injection payloads and
// resolved to an actor before it reaches a handler. Handlers only bind and
// render; authorization, validation, sanitization and auditing live in the
// moderation and publication services.
package cms
