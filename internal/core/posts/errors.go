package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post does not exist
	ErrNotFound = errors.New("post not found")

	// ErrInvalidPostID is returned for non-positive post IDs
	ErrInvalidPostID = errors.New("invalid post ID")

	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooShort   = errors.New("title is too short")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooShort = errors.New("content is too short")
	ErrExcerptTooLong  = errors.New("excerpt is too long")

	// ErrQueryTooShort is returned for searches under MinSearchLength characters
	ErrQueryTooShort = errors.New("search query is too short")

	// ErrEmptyUpdate is returned when an update carries no fields
	ErrEmptyUpdate = errors.New("nothing to update")

	// ErrNoCoverImage is returned when an upload carries no file
	ErrNoCoverImage = errors.New("cover image is required")

	// ErrCoverUploadFailed is returned by CreateWithCover when the post was
	// created but its cover could not be uploaded
	ErrCoverUploadFailed = errors.New("cover image upload failed")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Err     error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, err error) error {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) ||
		errors.Is(err, ErrInvalidPostID) ||
		errors.Is(err, ErrQueryTooShort) ||
		errors.Is(err, ErrEmptyUpdate) ||
		errors.Is(err, ErrNoCoverImage)
}

// FieldMessages flattens the validation errors in err into field -> message.
func FieldMessages(err error) map[string]string {
	fields := make(map[string]string)
	collectFields(err, fields)
	return fields
}

func collectFields(err error, fields map[string]string) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectFields(e, fields)
		}
		return
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		if _, exists := fields[valErr.Field]; !exists {
			fields[valErr.Field] = valErr.Message
		}
	}
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
