package esplora

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingURL ...
	ErrMissingURL = errors.New("missing esplora url")
	// ErrNetworkNotSupported ...
	ErrNetworkNotSupported = errors.New("network not supported")
	// ErrInvalidRequestsPerSecond ...
	ErrInvalidRequestsPerSecond = errors.New("requests per second must not be negative")
)

// HTTPError is returned when the endpoint replies with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("esplora: status %d: %s", e.StatusCode, e.Message)
}
