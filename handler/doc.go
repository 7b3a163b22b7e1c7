// Package handler provides type-safe HTTP handlers and the JSON envelope every
// response is rendered in.
//
// Handlers bind the request into a typed struct and return a Response:
//
//	func approve(ctx handler.Context, req idRequest) handler.Response {
//		c, err := svc.Approve(ctx, req.ID, actor)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(c)
//	}
//
//	r.Post("/comments/{id}/approve", handler.Wrap(approve,
//		handler.WithBinders[handler.Context, idRequest](binder.ChiPath()),
//		handler.WithErrorHandler[handler.Context, idRequest](handler.NewErrorHandler[handler.Context](log)),
//	))
//
// # Envelope
//
// Successful responses are rendered as {"data": ..., "meta": ...}. Every error,
// whether returned by a handler, a binder or a middleware, is rendered as
//
//	{"error": {"code", "message", "timestamp", "traceId", "instance", "details"}}
//
// The status code and code string come from core.Classify. Errors that are not
// core.Error values are reported as INTERNAL_ERROR with a generic message so no
// internal detail reaches the client.
package handler
