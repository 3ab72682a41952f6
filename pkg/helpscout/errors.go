package helpscout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AuthError is returned when a token could not be renewed. The triggering
// call fails; renewal is not retried.
type AuthError struct {
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token renewal failed: %v", e.Err)
	}

	return fmt.Sprintf("token renewal failed with status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Unwrap returns the underlying cause, if any.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// FieldError is one validation failure reported by the API.
type FieldError struct {
	Path    string `json:"path"    yaml:"path"`
	Message string `json:"message" yaml:"message"`
	Source  string `json:"source"  yaml:"source"`
}

// APIError represents a resource request answered with HTTP status >= 400.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte

	// Decoded from the body when it follows the API's error envelope.
	Message string
	LogRef  string
	Errors  []FieldError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if len(e.Errors) == 1 {
		msg += fmt.Sprintf(" (%s: %s)", e.Errors[0].Path, e.Errors[0].Message)
	} else if len(e.Errors) > 1 {
		msg += fmt.Sprintf(" (%d field errors)", len(e.Errors))
	}

	return msg
}

// NewAPIError builds an APIError and decodes the error envelope when possible.
func NewAPIError(statusCode int, method, url string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}

	var envelope struct {
		Message  string `json:"message"`
		LogRef   string `json:"logRef"`
		Embedded struct {
			Errors []FieldError `json:"errors"`
		} `json:"_embedded"`
	}

	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		apiErr.Message = envelope.Message
		apiErr.LogRef = envelope.LogRef
		apiErr.Errors = envelope.Embedded.Errors
	}

	return apiErr
}

// TransportError wraps a failure below the HTTP layer (DNS, connect, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrCredentialsRequired = errors.New("client id and client secret are required")
	ErrObjectTypeRequired  = errors.New("object type is required")
	ErrIDRequired          = errors.New("resource id is required")
	ErrMaxPagesExceeded    = errors.New("list exceeded the configured page limit")
	ErrInvalidBaseURL      = errors.New("invalid base URL")
	ErrEmptyAccessToken    = errors.New("token endpoint returned an empty access token")
	ErrNoTokenManager      = errors.New("no token manager configured")
)

// StatusCode returns the HTTP status carried by an APIError or AuthError in
// the chain, or 0.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	authErr := &AuthError{}
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsRateLimited checks if the API rejected the request for exceeding the rate limit.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsAuthError checks if the error came from token renewal.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}
