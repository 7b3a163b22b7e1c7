package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/requestid"
)

// NewErrorHandler returns an ErrorHandler that logs err and renders the error
// envelope. Client errors are logged at warn level; unhandled errors at error
// level with the full error chain, which never reaches the response.
func NewErrorHandler[C Context](log *slog.Logger) ErrorHandler[C] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx C, err error) {
		r := ctx.Request()
		LogError(log, r, err)
		WriteError(ctx.ResponseWriter(), r, err)
	}
}

// LogError logs err with request context at a level derived from its status.
func LogError(log *slog.Logger, r *http.Request, err error) {
	ce := core.Classify(err)
	level := slog.LevelWarn
	if ce.Status() >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	log.LogAttrs(r.Context(), level, "request error",
		logger.RequestID(requestid.FromContext(r.Context())),
		logger.Error(err),
		slog.Int("status_code", ce.Status()),
		slog.String("code", ce.Code()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("error_handler"),
	)
}
