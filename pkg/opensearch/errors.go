package opensearch

import "errors"

var (
	ErrNoAddresses       = errors.New("opensearch: no addresses configured")
	ErrConnectionFailed  = errors.New("opensearch: cluster did not answer")
	ErrHealthcheckFailed = errors.New("opensearch: healthcheck failed")
)
