package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxStripPasses bounds the decode-and-strip loop. Payloads nested deeper than
// this fall back to removing angle brackets outright.
const maxStripPasses = 5

var (
	strictPolicy = bluemonday.StrictPolicy()
	richPolicy   = newRichPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// StripHTML removes all markup from s and returns the plain-text remainder.
// Entity-encoded tags are decoded and stripped again until the output stops
// changing, so "&lt;script&gt;" cannot survive as a payload for a later decode.
func StripHTML(s string) Text {
	if s == "" {
		return Text{}
	}

	cur := RemoveNullBytes(s)
	for range maxStripPasses {
		next := stripOnce(cur)
		if next == cur {
			return result(s, cur)
		}
		cur = next
	}

	return result(s, flatten(cur))
}

func stripOnce(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(s)))
}

// flatten decodes every entity layer and drops the characters that could form
// a tag, repeating both steps until neither changes the text. Dropping a
// bracket can join two fragments into a new entity ("&l<>t;"), so a single
// round is not enough. The output is a fixed point of stripOnce.
func flatten(s string) string {
	s = RemoveNullBytes(s)
	for {
		next := dropBrackets(decodeAll(s))
		next = strings.ReplaceAll(strings.ReplaceAll(next, "\r\n", "\n"), "\r", "\n")
		if next == s {
			return s
		}
		s = next
	}
}

func decodeAll(s string) string {
	for {
		decoded := RemoveNullBytes(html.UnescapeString(s))
		if decoded == s {
			return s
		}
		s = decoded
	}
}

func dropBrackets(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
}

// SanitizeRichText keeps a safe subset of formatting markup (paragraphs,
// emphasis, lists, links with http/https targets) and drops everything else.
// Event handler attributes, scripts, frames and inline styles never survive.
func SanitizeRichText(s string) Text {
	if s == "" {
		return Text{}
	}
	cleaned := richPolicy.Sanitize(RemoveNullBytes(s))
	return result(s, strings.TrimSpace(cleaned))
}
