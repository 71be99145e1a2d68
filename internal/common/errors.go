package common

import "errors"

var (
	// ErrBusy is returned when an action is triggered while the same control
	// still has a request in flight. Nothing is sent.
	ErrBusy = errors.New("operation already in progress")

	// ErrNotConfirmed is returned by destructive actions invoked without the
	// user's confirmation. Nothing is sent.
	ErrNotConfirmed = errors.New("action not confirmed")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError is a user-facing problem found before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
