package config

import "errors"

var (
	ErrNilPointer    = errors.New("config: nil pointer provided to loader")
	ErrEnvFile       = errors.New("config: failed to read env file")
	ErrParsingConfig = errors.New("config: failed to parse environment")
)
