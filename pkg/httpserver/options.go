package httpserver

import (
	"log/slog"
	"net"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: addr cannot be empty")
	}
	return func(c *config) { c.addr = addr }
}

// WithListener serves on an existing listener instead of dialing addr.
func WithListener(ln net.Listener) Option {
	if ln == nil {
		panic("httpserver: nil listener")
	}
	return func(c *config) { c.listener = ln }
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = positive(d, "read timeout") }
}

// WithReadHeaderTimeout bounds header reads. Defaults to 10s.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *config) { c.readHeaderTimeout = positive(d, "read header timeout") }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = positive(d, "write timeout") }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = positive(d, "idle timeout") }
}

// WithShutdownTimeout bounds graceful shutdown and stop hooks. Defaults to 5s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = positive(d, "shutdown timeout") }
}

// WithMaxHeaderBytes caps request header size. Defaults to 64KB.
func WithMaxHeaderBytes(n int) Option {
	if n <= 0 {
		panic("httpserver: max header bytes must be > 0")
	}
	return func(c *config) { c.maxHeaderBytes = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook runs h before the server accepts connections. An error
// aborts Run.
func WithStartHook(h Hook) Option {
	if h == nil {
		panic("httpserver: nil start hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook runs h after the server stopped accepting requests. Hooks
// run in registration order.
func WithStopHook(h Hook) Option {
	if h == nil {
		panic("httpserver: nil stop hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}

func positive(d time.Duration, name string) time.Duration {
	if d <= 0 {
		panic("httpserver: " + name + " must be > 0")
	}
	return d
}
