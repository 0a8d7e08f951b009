package users

import (
	"errors"
	"fmt"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUserID is returned for non-positive user IDs
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrNameRequired is returned when a profile update clears the name
	ErrNameRequired = errors.New("name is required")

	// ErrEmptyPatch is returned when an update carries no fields
	ErrEmptyPatch = errors.New("nothing to update")
)

type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address: %q", e.Email)
}

// IsValidationError reports whether err was raised before any request was sent.
func IsValidationError(err error) bool {
	var emailErr *InvalidEmailError
	return errors.As(err, &emailErr) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrEmptyPatch)
}
