package publication

import (
	"strings"

	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
)

const (
	MaxTitleLength   = 200
	MaxSummaryLength = 500
	MaxContentLength = 100_000
)

// ValidateDraft checks every field of in and returns all violations as
// validator.ValidationErrors.
func ValidateDraft(in Input, d *threat.Detector) error {
	return validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, MaxTitleLength),
		validator.NoMarkup("title", in.Title),

		validator.MaxLen("summary", in.Summary, MaxSummaryLength),
		validator.NoMarkup("summary", in.Summary),

		validator.Required("content", in.Content),
		validator.MaxLen("content", in.Content, MaxContentLength),
		validator.NoDangerousContent("content", in.Content, d),
		validator.SafeLinks("content", in.Content),

		validator.When(strings.TrimSpace(in.SourceURL) != "",
			validator.ValidURL("sourceUrl", in.SourceURL)),
	)
}

// validateCleaned requires a title and visible body text after sanitization.
func validateCleaned(clean Input) error {
	return validator.Apply(
		validator.Required("title", clean.Title),
		validator.Required("content", sanitizer.StripHTML(clean.Content).Value),
	)
}

func sanitizeDraft(in Input) Input {
	out := Input{
		Title:   sanitizer.CleanLine(in.Title).Value,
		Summary: sanitizer.CleanText(in.Summary).Value,
		Content: sanitizer.SanitizeRichText(in.Content).Value,
	}
	if u, ok := sanitizer.SanitizeURL(in.SourceURL); ok {
		out.SourceURL = u.Value
	}
	return out
}
