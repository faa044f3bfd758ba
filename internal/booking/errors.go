package booking

import (
	"errors"
	"fmt"
)

type ValidationCode string

const (
	CodeMissingField     ValidationCode = "missing_field"
	CodeInvalidEmail     ValidationCode = "invalid_email"
	CodeInvalidPhone     ValidationCode = "invalid_phone"
	CodeInvalidGroupSize ValidationCode = "invalid_group_size"
	CodeInvalidInput     ValidationCode = "invalid_input"
)

// ValidationError is a user-correctable problem with a booking request. It is
// always returned before any transaction is opened.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code ValidationCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotFound         = errors.New("Booking not found.")
	ErrAlreadyCancelled = errors.New("This booking is already cancelled.")
	// ErrSystem wraps persistence failures. Callers should report a generic
	// retryable error and log the cause.
	ErrSystem = errors.New("booking system error")
)

func systemError(err error) error {
	return fmt.Errorf("%w: %v", ErrSystem, err)
}
