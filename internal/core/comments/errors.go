package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrCommentNotFound indicates the requested comment doesn't exist
	ErrCommentNotFound = errors.New("comment not found")

	// ErrInvalidID indicates a non-positive post or comment ID
	ErrInvalidID = errors.New("invalid ID")

	// ErrContentTooLong indicates comment content exceeds the length limit
	ErrContentTooLong = errors.New("comment content is too long")

	// ErrContentEmpty indicates comment content is empty
	ErrContentEmpty = errors.New("comment content is required")

	// ErrNotAuthorized indicates the viewer may not perform this action
	ErrNotAuthorized = errors.New("not authorized")

	// ErrReplyNotAllowed indicates the comment is too deep or the viewer is anonymous
	ErrReplyNotAllowed = errors.New("replies are not allowed here")

	// ErrDeleteCancelled indicates the confirmation gate declined a delete
	ErrDeleteCancelled = errors.New("delete cancelled")

	// ErrInFlight indicates the control already has a request running
	ErrInFlight = errors.New("request already in flight")
)

// LevelError reports a comment whose level disagrees with its position in the thread.
type LevelError struct {
	CommentID int64
	Want      int
	Got       int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("comment %d has level %d, expected %d", e.CommentID, e.Got, e.Want)
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommentNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrContentEmpty) ||
		errors.Is(err, ErrInvalidID)
}
