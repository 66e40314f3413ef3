package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrPermissionDenied is returned when the caller is authenticated but
	// lacks the role required for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSelfDemotion is returned when an admin attempts to change their own
	// role away from admin. Rejected to prevent irreversible lockout.
	ErrSelfDemotion = errors.New("admins cannot demote themselves")
)

// ValidationError wraps a field-level validation failure with the field name
// so the API layer can produce a useful message without leaking internals.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
