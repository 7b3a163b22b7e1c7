package secheaders

import (
	"net/http"
	"strconv"
)

// DisclosureHeaders are removed from every response.
var DisclosureHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
	"X-AspNetMvc-Version",
}

// Middleware applies cfg to every response.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	hsts := "max-age=" + strconv.FormatInt(int64(cfg.HSTSMaxAge.Seconds()), 10)
	if cfg.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(&stripWriter{ResponseWriter: w}, r)
		})
	}
}

// stripWriter removes disclosure headers right before they are written.
type stripWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *stripWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		for _, name := range DisclosureHeaders {
			w.ResponseWriter.Header().Del(name)
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *stripWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *stripWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *stripWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
