package threat

import "errors"

var (
	ErrInvalidPattern = errors.New("threat: invalid signature pattern")
	ErrReadRules      = errors.New("threat: failed to read rules file")
	ErrParseRules     = errors.New("threat: failed to parse rules file")
)
