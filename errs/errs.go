// Package errs provides the structured error taxonomy shared by every
// dicecore component.
package errs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeInvalidInput marks malformed or out-of-domain construction
	// arguments. These are rejected immediately, never clamped.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodePolicyViolation marks an operation attempted against an entity in
	// the wrong lifecycle state.
	CodePolicyViolation Code = "POLICY_VIOLATION"

	// CodeNotFound marks a handle that does not address a live entity.
	CodeNotFound Code = "NOT_FOUND"
)

// Sentinels for errors.Is comparisons by code.
var (
	ErrInvalidInput    = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrPolicyViolation = &Error{Code: CodePolicyViolation, Message: "policy violation"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error carrying metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Invalid returns a CodeInvalidInput error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// Policy returns a CodePolicyViolation error with a formatted message.
func Policy(format string, args ...any) *Error {
	return New(CodePolicyViolation, fmt.Sprintf(format, args...))
}

// NotFound returns a CodeNotFound error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

// IsInvalid reports whether err carries CodeInvalidInput.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsPolicy reports whether err carries CodePolicyViolation.
func IsPolicy(err error) bool { return errors.Is(err, ErrPolicyViolation) }

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
