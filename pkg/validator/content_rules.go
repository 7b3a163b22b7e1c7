package validator

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
)

// NoMarkup validates that value equals its HTML-stripped form.
func NoMarkup(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return sanitizer.StripHTML(value).Value == value
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeContainsMarkup,
			Message:           "must not contain markup",
			TranslationKey:    "validation.no_markup",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// NoDangerousContent rejects values matching the XSS signature family of d.
// SQL keywords are ordinary words in prose and are not checked here.
func NoDangerousContent(field, value string, d *threat.Detector) Rule {
	return Rule{
		Check: func() bool {
			return d.ClassifyXSS(value).IsClean()
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeInvalidContent,
			Message:           "contains disallowed content",
			TranslationKey:    "validation.dangerous_content",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// linkAttrs lists attributes whose values are navigated to or fetched.
var linkAttrs = []string{"href", "src", "action", "formaction", "poster", "cite"}

// SafeLinks validates that every link target in the HTML fragment value is an
// absolute http or https URL. Fragment-only and relative links are allowed.
func SafeLinks(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return unsafeLink(value) == ""
		},
		Error: ValidationError{
			Field:             field,
			Code:              CodeInvalidURL,
			Message:           "contains a link with a disallowed target",
			TranslationKey:    "validation.safe_links",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// unsafeLink returns the first offending link target in doc, or "".
func unsafeLink(doc string) string {
	if !strings.Contains(doc, "<") {
		return ""
	}
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	var bad string
	d.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range linkAttrs {
			v, ok := s.Attr(attr)
			if !ok || isLocalLink(v) {
				continue
			}
			if _, ok := sanitizer.SanitizeURL(v); !ok {
				bad = v
				return false
			}
		}
		return true
	})
	return bad
}

// isLocalLink reports whether v stays on the current site: a fragment, or a
// path without scheme or authority.
func isLocalLink(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "#") {
		return true
	}
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") && !strings.HasPrefix(v, "/\\") {
		return !strings.Contains(v, "\\") && strings.IndexFunc(v, isControl) < 0
	}
	return false
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
