package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailRequired is returned when the email field is blank
	ErrEmailRequired = errors.New("email is required")

	// ErrPasswordRequired is returned when the password field is blank
	ErrPasswordRequired = errors.New("password is required")

	// ErrNameRequired is returned when registering without a name
	ErrNameRequired = errors.New("name is required")

	// ErrPasswordMismatch is returned when the confirmation differs from the password
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidCredentials is returned when the backend rejects a sign-in
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingToken is returned when a sign-in succeeds without a token
	ErrMissingToken = errors.New("sign-in response carried no token")
)

type InvalidEmailError struct {
	Email  string
	Reason string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address %q: %s", e.Email, e.Reason)
}

type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("password does not meet requirements: %s", e.Reason)
}

// IsValidationError reports whether err was raised before any request was sent.
func IsValidationError(err error) bool {
	var emailErr *InvalidEmailError
	var weakErr *WeakPasswordError
	return errors.As(err, &emailErr) ||
		errors.As(err, &weakErr) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrPasswordMismatch)
}
