package apperrors

import "errors"

// Error kinds surfaced by the school directory. Handlers translate these into
// HTTP statuses in middleware.HandleAPIError.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrProcessingFailed = errors.New("processing failed")
	ErrStorage          = errors.New("storage error")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrResourceNotFound = errors.New("resource not found")
)

// Submission errors
var (
	ErrEmailAlreadyExists = errors.New("a school with this email already exists")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is/As.
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithCause records the lower-level error that triggered this one.
func (e *CustomError) WithCause(cause error) *CustomError {
	e.Cause = cause
	return e
}

// NewValidationError is a client-fixable input problem (422).
func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message)
}

// NewConflictError reports a duplicate unique field (409).
func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

// NewProcessingError wraps an image decode or encode failure (500).
func NewProcessingError(cause error) *CustomError {
	return NewCustomError(ErrProcessingFailed, "failed to process image").WithCause(cause)
}

// NewStorageError wraps a database failure (500).
func NewStorageError(cause error) *CustomError {
	return NewCustomError(ErrStorage, "database error").WithCause(cause)
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Message returns the human readable message carried by a CustomError, or
// fallback when err is not one.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
