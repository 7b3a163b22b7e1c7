package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	horizontalSpaceRegex = regexp.MustCompile(`[\t\f\v\p{Zs}]+`)
	blankLinesRegex      = regexp.MustCompile(`\n{3,}`)
	anySpaceRegex        = regexp.MustCompile(`\s+`)
)

// RemoveNullBytes drops NUL characters.
func RemoveNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// RemoveControlChars drops control characters except newlines and tabs.
// Carriage returns are folded into the following newline.
func RemoveControlChars(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
}

// NormalizeWhitespace collapses every whitespace run into a single space and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(anySpaceRegex.ReplaceAllString(s, " "))
}

// MaxLength truncates s to at most n runes.
func MaxLength(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// CleanText prepares multi-line user text for storage: markup is stripped,
// control characters removed, horizontal whitespace collapsed and runs of
// blank lines shortened. Line breaks are preserved.
func CleanText(s string) Text {
	cleaned := Apply(StripHTML(s).Value,
		RemoveControlChars,
		func(v string) string { return horizontalSpaceRegex.ReplaceAllString(v, " ") },
		func(v string) string { return blankLinesRegex.ReplaceAllString(v, "\n\n") },
		strings.TrimSpace,
	)
	return result(s, cleaned)
}

// CleanLine prepares single-line user text (names, titles) for storage.
func CleanLine(s string) Text {
	cleaned := Apply(StripHTML(s).Value,
		RemoveControlChars,
		NormalizeWhitespace,
	)
	return result(s, cleaned)
}
