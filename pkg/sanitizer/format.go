package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxURLLength is the longest URL SanitizeURL accepts.
	MaxURLLength = 2048
	// MaxEmailLength is the longest address SanitizeEmail accepts.
	MaxEmailLength = 254
	// MaxEmailLocalLength is the longest local part SanitizeEmail accepts.
	MaxEmailLocalLength = 64
)

var emailRegex = regexp.MustCompile(
	`^[a-z0-9!#$%&'*+/=?^_{|}~-]+(\.[a-z0-9!#$%&'*+/=?^_{|}~-]+)*@([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`,
)

// SanitizeURL accepts only absolute http and https URLs with a host.
// Every other scheme (javascript:, data:, vbscript:, file:, ...), relative
// references, embedded credentials and malformed input are rejected.
func SanitizeURL(raw string) (Text, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > MaxURLLength || hasControl(trimmed) {
		return Text{}, false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Text{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Text{}, false
	}
	if u.Hostname() == "" || u.User != nil || u.Opaque != "" {
		return Text{}, false
	}

	cleaned := u.String()
	if len(cleaned) > MaxURLLength {
		return Text{}, false
	}
	return result(raw, cleaned), true
}

// SanitizeEmail trims and lower-cases raw and checks it against a pragmatic
// subset of RFC 5322: dot-atom local part, dotted domain, alphabetic TLD.
func SanitizeEmail(raw string) (Text, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" || len(normalized) > MaxEmailLength || hasControl(normalized) {
		return Text{}, false
	}

	at := strings.LastIndexByte(normalized, '@')
	if at <= 0 || at > MaxEmailLocalLength {
		return Text{}, false
	}
	if !emailRegex.MatchString(normalized) {
		return Text{}, false
	}
	return result(raw, normalized), true
}

// MaskEmail hides most of the local part so addresses can be logged.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	local := []rune(email[:at])
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + email[at:]
	}
	return string(local[0]) + strings.Repeat("*", len(local)-2) + string(local[len(local)-1]) + email[at:]
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || unicode.IsSpace(r)
	}) >= 0
}
