package services

import "errors"

var (
	// ErrNotFound is returned when the referenced transaction does not exist
	ErrNotFound = errors.New("transaction not found")

	// ErrEditWindowExpired is returned when an update arrives after the edit window closed
	ErrEditWindowExpired = errors.New("edit window expired")
)

// ValidationError reports malformed input or a rejection by the store.
// The message is returned to the caller as-is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func storeRejected(err error) error {
	return &ValidationError{Message: err.Error(), Err: err}
}
