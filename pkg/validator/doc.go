// Package validator builds declarative validation out of small Rule values.
//
// A Rule pairs a Check func with the ValidationError reported when the check
// fails. Apply evaluates every rule and returns all failures at once as
// ValidationErrors, so a client can fix every problem in one round trip.
//
//	err := validator.Apply(
//		validator.Required("author_name", in.AuthorName),
//		validator.MaxLen("author_name", in.AuthorName, 100),
//		validator.ValidEmail("author_email", in.AuthorEmail),
//		validator.NoDangerousContent("content", in.Content, detector),
//	)
//
// Content rules are built on the sanitizer and threat packages: NoMarkup
// compares a value with its HTML-stripped form, NoDangerousContent applies the
// XSS signature family and SafeLinks checks every link target in an HTML
// fragment.
//
// ValidationErrors unwraps to core.ErrValidation and implements
// core.FieldErrorer, so the HTTP layer renders it as a 400 envelope with
// per-field details.
package validator
