package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/flowgrid/flowgrid-go/client"
)

// Code classifies an auth failure for programmatic handling.
type Code string

const (
	CodeHydrationFailed Code = "HYDRATION_FAILED"
	CodeTokenInvalid    Code = "TOKEN_INVALID"
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeNetworkError    Code = "NETWORK_ERROR"
	CodeTimeout         Code = "TIMEOUT"
	CodeUnknown         Code = "UNKNOWN"
)

// Category groups codes by the subsystem that produced the failure.
type Category string

const (
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryAuthorization  Category = "AUTHORIZATION"
	CategoryNetwork        Category = "NETWORK"
	CategoryValidation     Category = "VALIDATION"
	CategoryInternal       Category = "INTERNAL"
)

// AuthError is the error type returned by every Service and Hydrator
// operation. Message is safe to surface to an end user; Err retains the
// underlying cause for logs.
type AuthError struct {
	Code     Code
	Category Category
	Message  string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AsAuthError unwraps err to an *AuthError if one is in the chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidData        = "Invalid data provided"
	msgRateLimited        = "Too many requests. Please try again later"
	msgServerError        = "Server error. Please try again later"
	msgNetworkError       = "Unable to reach the server. Check your connection"
	msgTimeout            = "The request timed out"
)

// translateError maps a client error to the user-facing AuthError
// taxonomy. Server messages are surfaced only for validation failures
// where they describe the caller's input; everything else gets a fixed
// message so internals never leak to the UI.
func translateError(err error) *AuthError {
	if err == nil {
		return nil
	}
	if ae, ok := AsAuthError(err); ok {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AuthError{Code: CodeTimeout, Category: CategoryNetwork, Message: msgTimeout, Err: err}
	}
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		return &AuthError{Code: CodeNetworkError, Category: CategoryNetwork, Message: msgNetworkError, Err: err}
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return &AuthError{Code: CodeTokenInvalid, Category: CategoryAuthentication, Message: msgInvalidCredentials, Err: err}
	case apiErr.Status == http.StatusForbidden:
		return &AuthError{Code: CodeTokenInvalid, Category: CategoryAuthorization, Message: "You do not have access to this resource", Err: err}
	case apiErr.Status == http.StatusNotFound:
		return &AuthError{Code: CodeUserNotFound, Category: CategoryAuthentication, Message: "Account not found", Err: err}
	case apiErr.Status == http.StatusUnprocessableEntity:
		msg := apiErr.Message
		if msg == "" {
			msg = msgInvalidData
		}
		return &AuthError{Code: CodeUnknown, Category: CategoryValidation, Message: msg, Err: err}
	case apiErr.Status == http.StatusTooManyRequests:
		return &AuthError{Code: CodeUnknown, Category: CategoryInternal, Message: msgRateLimited, Err: err}
	case apiErr.Status >= http.StatusInternalServerError:
		return &AuthError{Code: CodeUnknown, Category: CategoryInternal, Message: msgServerError, Err: err}
	default:
		msg := apiErr.Message
		if msg == "" {
			msg = msgServerError
		}
		return &AuthError{Code: CodeUnknown, Category: CategoryInternal, Message: msg, Err: err}
	}
}

// isNetworkError reports whether err is a transport failure or timeout
// rather than an explicit server response.
func isNetworkError(err error) bool {
	ae := translateError(err)
	return ae != nil && (ae.Code == CodeNetworkError || ae.Code == CodeTimeout)
}
