package clientip

import "context"

type (
	ipKey        struct{}
	userAgentKey struct{}
)

func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// FromContext returns the client IP stored by the middleware, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

func UserAgentFromContext(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}

// ExtractIP and ExtractUserAgent match the (value, found) extractor shape used
// by the audit logger.
func ExtractIP(ctx context.Context) (string, bool) {
	ip := FromContext(ctx)
	return ip, ip != ""
}

func ExtractUserAgent(ctx context.Context) (string, bool) {
	ua := UserAgentFromContext(ctx)
	return ua, ua != ""
}
