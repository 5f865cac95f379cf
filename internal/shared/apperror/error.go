package apperror

import (
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string // Error code (e.g., INVALID_INPUT)
	Message    string // User-friendly message
	HTTPStatus int    // HTTP status code
	Details    any    // Optional structured payload, e.g. field -> messages
	Err        error  // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// NewValidation builds the aggregate validation error. Keys are field names
// or, for bulk imports, row numbers.
func NewValidation(fields map[string][]string) *AppError {
	return &AppError{
		Code:       CodeValidationError,
		Message:    "One or more validation errors occurred",
		HTTPStatus: http.StatusBadRequest,
		Details:    fields,
	}
}

// ValidationDetails returns the field map of an aggregate validation error.
func ValidationDetails(err *AppError) (map[string][]string, bool) {
	if err == nil {
		return nil, false
	}
	fields, ok := err.Details.(map[string][]string)
	return fields, ok
}
