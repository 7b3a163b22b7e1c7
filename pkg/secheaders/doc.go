// Package secheaders adds security headers to every response and removes
// headers that disclose server software or versions.
//
//	r.Use(secheaders.Middleware(secheaders.Config{HSTS: env == "production"}))
//
// Disclosure headers are removed when the response header is flushed, so
// values set by handlers or reverse-proxied upstreams are caught as well.
package secheaders
