package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the typed form of a non-2xx HTTP response. Message, Code and
// Details come from the response body when the server supplies them,
// otherwise Message falls back to the HTTP status text.
type APIError struct {
	Status     int
	StatusText string
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.StatusText
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status of err, or 0 for transport errors.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}

// retryable reports whether a failed attempt may be retried. Transport
// errors and server errors are retryable; client errors are not, except
// request timeout and rate limiting.
func retryable(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return true // transport failure, no HTTP status
	}

	if apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status == http.StatusRequestTimeout || apiErr.Status == http.StatusTooManyRequests
	}

	return true
}
