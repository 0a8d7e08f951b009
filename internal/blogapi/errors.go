package blogapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Typed errors for Welog API calls.
// These allow services and handlers to use errors.Is() instead of status code checks.
var (
	// ErrBadRequest indicates the request was malformed or rejected by validation (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates missing, invalid or expired credentials (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for the resource (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the resource already exists or changed concurrently (HTTP 409).
	ErrConflict = errors.New("conflict")

	// ErrPayloadTooLarge indicates an upload exceeded the server limit (HTTP 413).
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrRateLimited indicates the server throttled the caller (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates an upstream failure (HTTP 5xx).
	ErrServer = errors.New("server error")

	// ErrSessionExpired is returned alongside ErrUnauthorized when a 401 arrives for a
	// request other than signin/signup. The client's OnUnauthorized hook has already run.
	ErrSessionExpired = errors.New("session expired")
)

// APIError carries the HTTP status and server message of a failed call.
type APIError struct {
	// Fields holds per-field validation messages when the backend rejected a form.
	Fields     map[string]string
	Operation  string
	Message    string
	StatusCode int
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v (%d): %s", e.Operation, e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %v (%d)", e.Operation, e.kind, e.StatusCode)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// statusError maps a response status to its sentinel.
func statusError(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if status >= 500 {
		return ErrServer
	}
	return ErrBadRequest
}

// IsAuthError returns true if the error is an authentication/authorization error.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsNotFound returns true if the server reported the resource missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message returns the server-supplied message of an API error, or "" when the error
// did not come from a response.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// FieldErrors returns the per-field validation messages of an API error, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
