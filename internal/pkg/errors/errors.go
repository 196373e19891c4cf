// Package errors defines the application error type and the benchmark
// error taxonomy. Configuration errors (unknown spec, empty matrix,
// validation) abort a run before any task executes; everything else is
// captured at task or metric granularity and never surfaces as an error.
package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION_ERROR"
	CodeUnknownSpec = "UNKNOWN_SPEC"
	CodeEmptyMatrix = "EMPTY_MATRIX"
)

// AppError represents an application error with context
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithError wraps an underlying error
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Internal creates an internal error
func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// UnknownSpec creates an error for a spec name with no registered factory
func UnknownSpec(kind, name string) *AppError {
	return New(CodeUnknownSpec, fmt.Sprintf("unknown %s %q", kind, name)).
		WithDetail("kind", kind).
		WithDetail("name", name)
}

// EmptyMatrix creates an error for a benchmark configuration that expands
// to zero tasks
func EmptyMatrix(message string) *AppError {
	return New(CodeEmptyMatrix, message)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetAppError extracts AppError from error if present
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func hasCode(err error, code string) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsUnknownSpec checks if the error is an unknown spec error
func IsUnknownSpec(err error) bool { return hasCode(err, CodeUnknownSpec) }

// IsEmptyMatrix checks if the error is an empty matrix error
func IsEmptyMatrix(err error) bool { return hasCode(err, CodeEmptyMatrix) }

// IsConfiguration reports whether the error belongs to the fail-fast
// configuration domain rather than the captured per-task domain.
func IsConfiguration(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		switch appErr.Code {
		case CodeValidation, CodeUnknownSpec, CodeEmptyMatrix:
			return true
		}
	}
	return false
}
