package notifications

import "errors"

// ErrInvalidID indicates a non-positive user or notification ID
var ErrInvalidID = errors.New("invalid ID")
