package helpdesk

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the helpdesk API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("helpdesk API error (%d): %s", e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying: server-side
// errors and rate limiting. Other 4xx responses mean the request itself
// is wrong and will not improve on retry.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// TransportError is a failure before any HTTP status was received:
// connection refused, DNS failure, timeout. Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("helpdesk request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err (or any error in its chain) is a
// retryable helpdesk failure.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
