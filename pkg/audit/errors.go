package audit

import "errors"

var (
	ErrEventValidation     = errors.New("audit: event validation failed")
	ErrStorageNotAvailable = errors.New("audit: storage backend is unavailable")
	ErrQueryNotSupported   = errors.New("audit: storage does not support queries")
	ErrInvalidSchedule     = errors.New("audit: invalid retention schedule")
	ErrInvalidHasherKey    = errors.New("audit: invalid hasher key")
)
