// Package clientip resolves the client address and user agent of a request.
//
// Forwarding headers (CF-Connecting-IP, DO-Connecting-IP, X-Forwarded-For,
// X-Real-IP) are only honored when the direct peer is a trusted proxy. With
// no trusted proxies configured the peer address is always used, so clients
// cannot spoof their address to evade rate limits or audit trails.
//
//	resolver, err := clientip.NewResolver([]string{"10.0.0.0/8"})
//	r.Use(resolver.Middleware)
//	ip := clientip.FromContext(ctx)
package clientip
