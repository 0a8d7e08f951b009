package likes

import "errors"

var (
	// ErrInvalidID indicates a non-positive post or user ID
	ErrInvalidID = errors.New("invalid ID")

	// ErrNotAuthenticated indicates an anonymous viewer tried to like a post
	ErrNotAuthenticated = errors.New("sign in to like posts")

	// ErrInFlight indicates the toggle already has a request running
	ErrInFlight = errors.New("like request already in flight")

	// ErrNotPending indicates Commit or Rollback was called without a pending toggle
	ErrNotPending = errors.New("no pending like toggle")
)

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidID) || errors.Is(err, ErrNotAuthenticated)
}
