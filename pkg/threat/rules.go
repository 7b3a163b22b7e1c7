package threat

import (
	"errors"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Rules are additional signatures loaded on top of the built-in set.
// Patterns are RE2 expressions matched case-insensitively.
type Rules struct {
	SQLInjection  []string `yaml:"sql_injection"`
	XSS           []string `yaml:"xss"`
	PathTraversal []string `yaml:"path_traversal"`
	UserAgents    []string `yaml:"user_agents"`
	// SafeHeaders extends the list of structural headers the request screen
	// does not inspect.
	SafeHeaders []string `yaml:"safe_headers"`
}

// Merge returns the union of r and other.
func (r Rules) Merge(other Rules) Rules {
	return Rules{
		SQLInjection:  append(slices.Clone(r.SQLInjection), other.SQLInjection...),
		XSS:           append(slices.Clone(r.XSS), other.XSS...),
		PathTraversal: append(slices.Clone(r.PathTraversal), other.PathTraversal...),
		UserAgents:    append(slices.Clone(r.UserAgents), other.UserAgents...),
		SafeHeaders:   append(slices.Clone(r.SafeHeaders), other.SafeHeaders...),
	}
}

// ParseRules decodes a YAML rules document and checks every pattern compiles.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, errors.Join(ErrParseRules, err)
	}

	for _, group := range [][]string{r.SQLInjection, r.XSS, r.PathTraversal} {
		for _, p := range group {
			if _, err := compileSignature("rule", p); err != nil {
				return Rules{}, err
			}
		}
	}
	return r, nil
}

// LoadRules reads and parses a YAML rules file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, errors.Join(ErrReadRules, err)
	}
	return ParseRules(data)
}
