// Package errors provides structured error types for layerroute.
//
// Routing failures are per-net and recoverable: the router records them on
// the net's result and moves on. The codes below let callers (CLI, HTTP API,
// tests) tell the failure classes apart without string matching.
//
// # Error Codes
//
//   - INVALID_COORDINATE: a start or target lies outside the grid or names a
//     layer that does not exist. Rejected before any search begins.
//   - UNREACHABLE: the start or target is already claimed, or no finite-cost
//     path exists under the current connectivity and occupancy. Being blocked
//     by another net and being structurally disconnected are not distinguished.
//   - INVALID_GRID: a cost table is empty, ragged, or holds a cost below 1.
//   - INVALID_INPUT / INVALID_FORMAT: malformed options, orders or files.
//   - RENDER_FAILED: Graphviz or rsvg-convert could not produce an output.
//   - INTERNAL_ERROR: a broken internal invariant, such as a path whose
//     recomputed cost disagrees with the search.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCoordinate, "start %v outside grid", p)
//	if errors.Is(err, errors.ErrCodeUnreachable) {
//	    // record the net as unrouted
//	}
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
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidGrid       Code = "INVALID_GRID"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Routing errors
	ErrCodeUnreachable Code = "UNREACHABLE"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeTimeout  Code = "TIMEOUT"

	// Output errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether any *Error in err's chain carries the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the chain holds no *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCodeOr is GetCode with a fallback for errors that carry no code.
func GetCodeOr(err error, fallback Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	return fallback
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

// IsUnreachable is shorthand for Is(err, ErrCodeUnreachable).
func IsUnreachable(err error) bool { return Is(err, ErrCodeUnreachable) }

// IsInvalidCoordinate is shorthand for Is(err, ErrCodeInvalidCoordinate).
func IsInvalidCoordinate(err error) bool { return Is(err, ErrCodeInvalidCoordinate) }
