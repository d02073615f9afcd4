package errors

import (
	"fmt"
)

// ErrorType classifies failures that are not already carried by a typed
// domain error. Decode and column-validation failures are reported by
// tabular.DecodeError and schema.ValidationError directly.
type ErrorType string

const (
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	ErrTypeConflict ErrorType = "CONFLICT"
	ErrTypeStorage  ErrorType = "STORAGE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

// NewConflictError reports a state conflict such as a superseded upload.
func NewConflictError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConflict, message, cause)
}

// NewStorageError reports a failure to produce or persist output, such as
// an export the encoder could not write.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}
