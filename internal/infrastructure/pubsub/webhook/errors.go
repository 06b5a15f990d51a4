package webhookpubsub

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTopic is returned whenever attempting to subscribe to an
	// unknown topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid http(s) URL")
	// ErrInvalidRequestTimeout ...
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
)

// DeliveryError is returned when an endpoint replies with a status other
// than 200.
type DeliveryError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf(
		"webhook %s replied with status %d: %s", e.Endpoint, e.StatusCode, e.Message,
	)
}
