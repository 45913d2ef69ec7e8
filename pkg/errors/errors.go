// Package errors provides structured error types for tasktree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server, and the stores
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Structural errors found while loading a graph (MISSING_ROOT,
//     DANGLING_DEPENDENCY, INVALID_FORMAT)
//   - Input and lookup errors (INVALID_INPUT, TASK_NOT_FOUND, FILE_NOT_FOUND)
//   - Backend and internal errors (STORE_UNAVAILABLE, UNSUPPORTED, INTERNAL_ERROR)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingRoot, "no record with id 0")
//	if errors.Is(err, errors.ErrCodeMissingRoot) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors (graph load)
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeMissingRoot        Code = "MISSING_ROOT"
	ErrCodeDanglingDependency Code = "DANGLING_DEPENDENCY"

	// Input and lookup errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeTaskNotFound Code = "TASK_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
