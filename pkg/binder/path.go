package binder

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
)

// PathExtractor returns the value of a named path parameter.
type PathExtractor func(r *http.Request, name string) string

// Path binds fields tagged `path:"name"` using extractor.
func Path(extractor PathExtractor) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		names, err := taggedNames(v, "path")
		if err != nil {
			return badRequest(ErrFailedToParsePath, "%v", err)
		}
		values := make(map[string][]string, len(names))
		for _, name := range names {
			if val := extractor(r, name); val != "" {
				values[name] = []string{val}
			}
		}
		if err := bindToStruct(v, "path", values); err != nil {
			return badRequest(ErrFailedToParsePath, "%v", err)
		}
		return nil
	}
}

// ChiPath binds path parameters resolved by the chi router.
func ChiPath() func(r *http.Request, v any) error {
	return Path(chi.URLParam)
}

func taggedNames(v any, tagName string) ([]string, error) {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Ptr || rt.Elem().Kind() != reflect.Struct {
		return nil, errTarget
	}
	rt = rt.Elem()

	names := make([]string, 0, rt.NumField())
	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, skip := parseFieldTag(f, tagName); !skip {
			names = append(names, name)
		}
	}
	return names, nil
}
