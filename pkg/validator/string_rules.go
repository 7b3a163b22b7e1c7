package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeRequired,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MaxLen validates that value has at most max characters.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeTooLong,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// MinLen validates that the trimmed value has at least min characters.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(strings.TrimSpace(value)) >= min
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeTooShort,
			Message:           fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxItems validates the length of a list field such as bulk ids.
func MaxItems[T any](field string, items []T, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(items) <= max
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeTooLong,
			Message:           fmt.Sprintf("must contain at most %d items", max),
			TranslationKey:    "validation.max_items",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// RequiredItems validates that a list field is not empty.
func RequiredItems[T any](field string, items []T) Rule {
	return Rule{
		Check: func() bool {
			return len(items) > 0
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeRequired,
			Message:           "at least one item is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// OneOf validates that value is one of allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowed, value)
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeInvalidValue,
			Message:           "value is not allowed",
			TranslationKey:    "validation.one_of",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
