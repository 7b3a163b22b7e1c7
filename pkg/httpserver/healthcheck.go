package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/cmsguard/pkg/logger"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthStatus is the JSON body written by HealthCheckHandler.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusAlive    = "ALIVE"
	statusReady    = "READY"
	statusNotReady = "NOT_READY"
	checkOK        = "ok"
	checkFailed    = "failed"
)

// HealthCheckHandler serves liveness and readiness probes.
//
// With no checks the handler answers 200 with status ALIVE. Otherwise every
// check runs against the request context bounded by timeout; if all pass the
// status is READY, else NOT_READY with 503. Check errors are logged, never
// written to the response.
func HealthCheckHandler(log *slog.Logger, timeout time.Duration, checks map[string]Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeHealth(w, http.StatusOK, HealthStatus{Status: statusAlive})
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		status := HealthStatus{Status: statusReady, Checks: make(map[string]string, len(checks))}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
				status.Checks[name] = checkFailed
				status.Status = statusNotReady
				continue
			}
			status.Checks[name] = checkOK
		}

		code := http.StatusOK
		if status.Status == statusNotReady {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, status)
	}
}

func writeHealth(w http.ResponseWriter, code int, body HealthStatus) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
