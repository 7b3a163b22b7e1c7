package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrymomot/cmsguard/core"
)

// DefaultMaxJSONSize is the maximum accepted JSON body size (1MB).
const DefaultMaxJSONSize = 1 << 20

// JSON decodes the request body into v. Unknown fields and trailing data are
// rejected. Requests without a body are skipped for methods that usually
// carry none.
func JSON() func(r *http.Request, v any) error {
	return JSONWithLimit(DefaultMaxJSONSize)
}

// JSONWithLimit is JSON with a custom body size limit.
func JSONWithLimit(limit int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
				return ErrBinderNotApplicable
			}
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return badRequest(ErrMissingContentType, "expected application/json")
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return badRequest(ErrUnsupportedMediaType, "expected application/json")
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			return badRequest(ErrFailedToParseJSON, "failed to read request body: %v", err)
		}
		if int64(len(body)) > limit {
			return badRequest(ErrFailedToParseJSON, "request body too large (max %d bytes)", limit)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return badRequest(ErrFailedToParseJSON, "empty body")
			}
			return badRequest(ErrFailedToParseJSON, "%v", err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return badRequest(ErrFailedToParseJSON, "unexpected data after JSON object")
		}
		return nil
	}
}

func badRequest(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", core.ErrBadRequest, sentinel, fmt.Sprintf(format, args...))
}
