package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	ErrEmptyName          = errors.New("name must not be empty")
	ErrNonPositivePrice   = errors.New("unit price must be greater than zero")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrItemNotFound       = errors.New("item not found")
	ErrNoItems            = errors.New("bill has no items")
)

// ValidationError describes a refused mutation. It matches both ErrValidation
// and the specific cause with errors.Is.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(field, value string, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}
