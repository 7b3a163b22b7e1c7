package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/cmsguard/core"
)

// Stable field-level codes.
const (
	CodeRequired       = "REQUIRED"
	CodeTooLong        = "TOO_LONG"
	CodeTooShort       = "TOO_SHORT"
	CodeContainsMarkup = "CONTAINS_MARKUP"
	CodeInvalidContent = "INVALID_CONTENT"
	CodeInvalidEmail   = "INVALID_EMAIL"
	CodeInvalidURL     = "INVALID_URL"
	CodeInvalidValue   = "INVALID_VALUE"
)

// ValidationError represents a single failed rule.
type ValidationError struct {
	Field             string
	Code              string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

// ValidationErrors represents a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap classifies every validation failure as core.ErrValidation.
func (ve ValidationErrors) Unwrap() error {
	return core.ErrValidation
}

// FieldErrors implements core.FieldErrorer.
func (ve ValidationErrors) FieldErrors() []core.FieldError {
	out := make([]core.FieldError, 0, len(ve))
	for _, err := range ve {
		out = append(out, core.FieldError{Field: err.Field, Code: err.Code, Message: err.Message})
	}
	return out
}

func (ve *ValidationErrors) Add(err ValidationError) {
	*ve = append(*ve, err)
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Codes returns the codes reported for field, in rule order.
func (ve ValidationErrors) Codes(field string) []string {
	var codes []string
	for _, err := range ve {
		if err.Field == field {
			codes = append(codes, err.Code)
		}
	}
	return codes
}

func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// Rule represents a single validation rule.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply executes every rule and returns all failures, or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// When returns rule if cond holds and a rule that always passes otherwise.
// Used for optional fields.
func When(cond bool, rule Rule) Rule {
	if cond {
		return rule
	}
	return Rule{Check: func() bool { return true }}
}

// ExtractValidationErrors extracts ValidationErrors from an error.
func ExtractValidationErrors(err error) ValidationErrors {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

func IsValidationError(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs)
}
