// Package core defines the client-facing error taxonomy shared by services and
// the HTTP layer.
//
// Services return core.Error values (or wrap them with fmt.Errorf and %w).
// The HTTP layer maps the Kind of the error to a fixed status code and a fixed
// code string, so a service never decides how its failures are rendered.
//
//	var ErrCommentNotFound = core.NewError(core.KindNotFound, "Comment not found")
//
//	if errors.Is(err, ErrCommentNotFound) { ... }
//	ce := core.Classify(err) // ce.Status() == 404, ce.Code() == "NOT_FOUND"
package core
