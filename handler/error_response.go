package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/requestid"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable code clients can branch on and a human-readable
// message. Details is only set for field-level validation failures.
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	TraceID   string            `json:"traceId,omitempty"`
	Instance  string            `json:"instance"`
	Details   []core.FieldError `json:"details,omitempty"`
}

// NewErrorBody builds the envelope body for err as seen by request r.
func NewErrorBody(r *http.Request, err error) ErrorBody {
	ce := core.Classify(err)
	body := ErrorBody{
		Code:      ce.Code(),
		Message:   ce.Message(),
		Timestamp: time.Now().UTC(),
		TraceID:   requestid.FromContext(r.Context()),
		Instance:  r.URL.Path,
	}

	var fe core.FieldErrorer
	if errors.As(err, &fe) {
		body.Details = fe.FieldErrors()
	}
	return body
}

// WriteError renders err as the error envelope. It is used by middlewares
// that reject a request before any handler runs.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	_ = errorResponse{err: err}.Render(w, r)
}

// Error returns a Response rendering err as the error envelope.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(core.Classify(e.err).Status())
	return json.NewEncoder(w).Encode(ErrorEnvelope{Error: NewErrorBody(r, e.err)})
}
