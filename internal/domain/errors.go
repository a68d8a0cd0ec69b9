package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced record does not exist. Repositories
// translate their driver's no-rows condition into this sentinel so callers can
// distinguish a missing record from a storage fault.
var ErrNotFound = errors.New("record not found")

// ValidationError reports client input that was rejected before any write
// happened. It is always correctable by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
