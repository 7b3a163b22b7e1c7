package binder

import (
	"net/http"
	"net/url"
)

// Query binds fields tagged `query:"name"` from the URL query string.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		values, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			return badRequest(ErrFailedToParseQuery, "%v", err)
		}
		if err := bindToStruct(v, "query", values); err != nil {
			return badRequest(ErrFailedToParseQuery, "%v", err)
		}
		return nil
	}
}
