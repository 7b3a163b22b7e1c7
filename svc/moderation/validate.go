package moderation

import (
	"strings"

	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
)

const (
	MaxArticleIDLength  = 64
	MaxAuthorNameLength = 100
	MaxContentLength    = 5000
)

// ValidateSubmission checks every field of in and returns all violations as
// validator.ValidationErrors.
func ValidateSubmission(in SubmitInput, d *threat.Detector) error {
	return validator.Apply(
		validator.Required("articleId", in.ArticleID),
		validator.MaxLen("articleId", in.ArticleID, MaxArticleIDLength),

		validator.Required("authorName", in.AuthorName),
		validator.MaxLen("authorName", in.AuthorName, MaxAuthorNameLength),
		validator.NoMarkup("authorName", in.AuthorName),

		validator.Required("authorEmail", in.AuthorEmail),
		validator.When(strings.TrimSpace(in.AuthorEmail) != "",
			validator.ValidEmail("authorEmail", in.AuthorEmail)),

		validator.When(strings.TrimSpace(in.AuthorURL) != "",
			validator.ValidURL("authorUrl", in.AuthorURL)),

		validator.Required("content", in.Content),
		validator.MaxLen("content", in.Content, MaxContentLength),
		validator.NoMarkup("content", in.Content),
		validator.NoDangerousContent("content", in.Content, d),
	)
}

// validateCleaned re-checks required fields after sanitization, which can
// reduce a value made of control characters to nothing.
func validateCleaned(clean SubmitInput) error {
	return validator.Apply(
		validator.Required("articleId", clean.ArticleID),
		validator.Required("authorName", clean.AuthorName),
		validator.Required("content", clean.Content),
	)
}

// sanitizeSubmission returns the cleaned fields of a validated submission.
func sanitizeSubmission(in SubmitInput) SubmitInput {
	out := SubmitInput{
		ArticleID:  sanitizer.CleanLine(in.ArticleID).Value,
		AuthorName: sanitizer.CleanLine(in.AuthorName).Value,
		Content:    sanitizer.CleanText(in.Content).Value,
		IP:         in.IP,
		UserAgent:  sanitizer.CleanLine(in.UserAgent).Value,
	}
	if e, ok := sanitizer.SanitizeEmail(in.AuthorEmail); ok {
		out.AuthorEmail = e.Value
	}
	if u, ok := sanitizer.SanitizeURL(in.AuthorURL); ok {
		out.AuthorURL = u.Value
	}
	return out
}

// ValidateBulk checks the id list of a bulk operation.
func ValidateBulk(ids []string) error {
	return validator.Apply(
		validator.RequiredItems("ids", ids),
		validator.MaxItems("ids", ids, MaxBulkItems),
	)
}
