// Package binder decodes HTTP requests into typed request structs.
//
// Binders are plain functions with the signature func(*http.Request, any) error
// and plug into handler.Wrap via handler.WithBinders:
//
//	handler.Wrap(h, handler.WithBinders[handler.Context, approveRequest](
//		binder.ChiPath(),
//		binder.JSON(),
//	))
//
// JSON bodies are size limited and decoded in strict mode. Path and query
// binders fill fields tagged `path:"..."` and `query:"..."`. Every binding
// failure wraps core.ErrBadRequest so it renders as a 400 envelope.
package binder
