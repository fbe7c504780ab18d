// Package errors provides structured error types for depscan.
//
// This package defines error codes and types that enable:
//   - Consistent fatal-versus-recoverable handling across analyzers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages on the command line
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - PRECONDITION_FAILED: The run was invoked out of order or against a
//     malformed input set (no repository, ambiguous platform descriptor)
//   - NOT_FOUND: Resource not found
//   - IO_ERROR, COMMAND_FAILED, NETWORK_ERROR: Collaborator failures
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodePrecondition, "quarkus-core not found in %s", root)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // Abort the run
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "failed to open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Run preconditions
	ErrCodePrecondition Code = "PRECONDITION_FAILED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Collaborator errors
	ErrCodeIO            Code = "IO_ERROR"
	ErrCodeCommandFailed Code = "COMMAND_FAILED"
	ErrCodeNetwork       Code = "NETWORK_ERROR"

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

// UserMessage returns err without error codes, keeping the messages of
// wrapped causes: "scaffold build failed: command \"mvn\" exited with status 1".
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}

// ExitError carries the exit status of a failed external command.
type ExitError struct {
	Command  string // Command line as it was issued
	ExitCode int    // Process exit status, -1 if the process never started
	Output   []string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

// Code returns the error code for this error type.
func (e *ExitError) Code() Code {
	return ErrCodeCommandFailed
}
