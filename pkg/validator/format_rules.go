package validator

import "github.com/dmitrymomot/cmsguard/pkg/sanitizer"

// ValidEmail validates value with sanitizer.SanitizeEmail.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, ok := sanitizer.SanitizeEmail(value)
			return ok
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeInvalidEmail,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidURL validates value with sanitizer.SanitizeURL: only absolute http and
// https URLs pass.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, ok := sanitizer.SanitizeURL(value)
			return ok
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeInvalidURL,
			Message:           "must be an absolute http or https URL",
			TranslationKey:    "validation.url",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
