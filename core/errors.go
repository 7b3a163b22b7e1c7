package core

import (
	"errors"
	"net/http"
)

// Kind is a failure category.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindInvalidOperation Kind = "invalid_operation"
	KindRateLimited      Kind = "rate_limited"
	KindUnhandled        Kind = "unhandled"
)

// Status returns the HTTP status code for k.
// Unauthorized maps to 403, not 401: callers without an identity are refused
// the same way as callers without the privilege.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthorized, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the default code string for k.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidOperation:
		return "INVALID_OPERATION"
	case KindRateLimited:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a categorized failure with a client-safe message. Error values
// are comparable, so errors.Is matches sentinels directly.
type Error struct {
	kind    Kind
	code    string
	message string
}

// NewError returns an error of kind with the kind's default code.
func NewError(kind Kind, message string) Error {
	return Error{kind: kind, code: kind.Code(), message: message}
}

// NewCodedError returns an error of kind with a specific code.
func NewCodedError(kind Kind, code, message string) Error {
	return Error{kind: kind, code: code, message: message}
}

func (e Error) Error() string   { return e.message }
func (e Error) Kind() Kind      { return e.kind }
func (e Error) Code() string    { return e.code }
func (e Error) Message() string { return e.message }
func (e Error) Status() int     { return e.kind.Status() }

var (
	ErrValidation       = NewError(KindValidation, "The request contains invalid data")
	ErrBadRequest       = NewCodedError(KindValidation, "BAD_REQUEST", "The request could not be parsed")
	ErrInvalidInput     = NewCodedError(KindValidation, "INVALID_INPUT", "The request contains invalid input")
	ErrInvalidHeaders   = NewCodedError(KindValidation, "INVALID_HEADERS", "The request contains invalid headers")
	ErrInvalidPath      = NewCodedError(KindValidation, "INVALID_PATH", "The request path is invalid")
	ErrUnauthorized     = NewError(KindUnauthorized, "Authentication is required")
	ErrForbidden        = NewError(KindForbidden, "You do not have permission to perform this action")
	ErrNotFound         = NewError(KindNotFound, "The requested resource was not found")
	ErrInvalidOperation = NewError(KindInvalidOperation, "The operation is not allowed in the current state")
	ErrTooManyRequests  = NewError(KindRateLimited, "Too many requests, try again later")
	ErrInternal         = NewError(KindUnhandled, "An unexpected error occurred")
)

// Classify returns the first core.Error in err's chain, or ErrInternal.
func Classify(err error) Error {
	var ce Error
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternal
}

// IsKind reports whether err carries a core.Error of kind.
func IsKind(err error, kind Kind) bool {
	var ce Error
	return errors.As(err, &ce) && ce.kind == kind
}
