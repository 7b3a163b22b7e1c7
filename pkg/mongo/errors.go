package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo: failed to connect")
	ErrDatabaseNotSet         = errors.New("mongo: database name is not set")
	ErrHealthcheckFailed      = errors.New("mongo: healthcheck failed")
)
