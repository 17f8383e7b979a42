package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput classifies every boundary rejection. Callers match it with errors.Is
// regardless of which field failed.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError represents a rejected input field
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether the target is the invalid input kind
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// NewValidationError builds the error returned for a rejected field
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   fmt.Sprintf("%v", value),
		Message: message,
	}
}
