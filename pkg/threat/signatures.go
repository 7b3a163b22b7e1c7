package threat

import (
	"fmt"
	"regexp"
	"strings"
)

type signature struct {
	name string
	re   *regexp.Regexp
}

type family struct {
	kind       Kind
	signatures []signature
}

func (f family) match(s string) (string, bool) {
	for _, sig := range f.signatures {
		if sig.re.MatchString(s) {
			return sig.name, true
		}
	}
	return "", false
}

func compileSignature(name, pattern string) (signature, error) {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return signature{}, fmt.Errorf("%w: %s: %w", ErrInvalidPattern, name, err)
	}
	return signature{name: name, re: re}, nil
}

func mustSignature(name, pattern string) signature {
	sig, err := compileSignature(name, pattern)
	if err != nil {
		panic(err)
	}
	return sig
}

func defaultSQLInjection() []signature {
	return []signature{
		mustSignature("sql_keyword", `\b(select|insert|update|delete|drop|create|alter|exec|execute|union|declare)\b`),
		mustSignature("sql_comment", `--|/\*|\*/`),
	}
}

func defaultXSS() []signature {
	return []signature{
		mustSignature("script_tag", `<\s*script`),
		mustSignature("javascript_uri", `javascript\s*:`),
		mustSignature("event_handler", `on(error|load)\s*=`),
		mustSignature("iframe_tag", `<\s*iframe`),
		mustSignature("eval_call", `eval\s*\(`),
		mustSignature("css_expression", `expression\s*\(`),
	}
}

func defaultPathTraversal() []signature {
	return []signature{
		mustSignature("dot_dot_slash", `\.\.[/\\]`),
		mustSignature("encoded_traversal", `(\.|%2e|%252e|%c0%ae)(\.|%2e|%252e|%c0%ae)(/|\\|%2f|%5c|%252f|%255c|%c0%af)`),
	}
}

// defaultUserAgents lists substrings of well-known scanner user agents.
var defaultUserAgents = []string{"sqlmap", "nikto", "nmap", "masscan", "nessus"}
