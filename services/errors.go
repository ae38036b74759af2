package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced resource, user, or bookmark does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals an illegal lifecycle transition.
	ErrConflict = errors.New("conflicting state")
)

// ValidationError reports malformed caller input, such as an unknown event kind
// or a missing required id. It is returned instead of panicking on bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
