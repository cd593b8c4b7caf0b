package services

import "errors"

var (
	// ErrValidation marks missing or malformed input. The wrapping error
	// carries a message safe to show to the client.
	ErrValidation = errors.New("validation error")

	ErrDuplicateAccount  = errors.New("email already in use")
	ErrUserNotFound      = errors.New("user not found")
	ErrNoteNotFound      = errors.New("note not found")
	ErrExportUnavailable = errors.New("note export is not configured")
	ErrExportNotFound    = errors.New("export not found")
)

// ValidationError is a client-facing validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
