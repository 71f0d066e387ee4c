package errors

import (
	"fmt"
)

// ProtocolError is the interface implemented by all errors raised by the
// object protocol. Ordinary, expected refusals (a write to a non-writable
// property, a rejected define) are reported as false results, never as errors.
type ProtocolError interface {
	error // Embed the standard error interface
	Kind() string // e.g., "Validation", "NotImplemented", "Revoked"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// ValidationError reports a malformed property descriptor record.
type ValidationError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation Error: %s", e.Msg)
}
func (e *ValidationError) Kind() string    { return "Validation" }
func (e *ValidationError) Message() string { return e.Msg }
func (e *ValidationError) Unwrap() error   { return e.Cause }
func (e *ValidationError) CausedBy(cause error) *ValidationError {
	e.Cause = cause
	return e
}

// NotImplementedError is raised by a virtual handler primitive that was not
// overridden. Operation names the primitive, e.g. "getOwnPropertyDescriptor".
type NotImplementedError struct {
	Operation string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("NotImplemented Error: %s", e.Message())
}
func (e *NotImplementedError) Kind() string { return "NotImplemented" }
func (e *NotImplementedError) Message() string {
	return fmt.Sprintf("handler does not implement %s", e.Operation)
}
func (e *NotImplementedError) Unwrap() error { return nil }

// RevokedError is raised by any operation on a revoked entity.
type RevokedError struct {
	Operation string
}

func (e *RevokedError) Error() string {
	return fmt.Sprintf("Revoked Error: %s", e.Message())
}
func (e *RevokedError) Kind() string { return "Revoked" }
func (e *RevokedError) Message() string {
	return fmt.Sprintf("cannot perform %s on a revoked entity", e.Operation)
}
func (e *RevokedError) Unwrap() error { return nil }

// CyclicChainError is raised instead of recursing forever when a delegation
// chain walk re-enters itself or grows past the configured depth.
type CyclicChainError struct {
	Operation string
	Key       string
	Depth     int
}

func (e *CyclicChainError) Error() string {
	return fmt.Sprintf("CyclicChain Error: %s", e.Message())
}
func (e *CyclicChainError) Kind() string { return "CyclicChain" }
func (e *CyclicChainError) Message() string {
	if e.Key == "" {
		return fmt.Sprintf("delegation chain cycle during %s (depth %d)", e.Operation, e.Depth)
	}
	return fmt.Sprintf("delegation chain cycle during %s of %q (depth %d)", e.Operation, e.Key, e.Depth)
}
func (e *CyclicChainError) Unwrap() error { return nil }

// TypeError reports an operation applied to a value of the wrong kind,
// such as calling a non-callable target.
type TypeError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type Error: %s", e.Msg)
}
func (e *TypeError) Kind() string    { return "Type" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }
func (e *TypeError) CausedBy(cause error) *TypeError {
	e.Cause = cause
	return e
}

// --- Helpers for creating errors ---

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func NewNotImplemented(operation string) *NotImplementedError {
	return &NotImplementedError{Operation: operation}
}

func NewRevoked(operation string) *RevokedError {
	return &RevokedError{Operation: operation}
}
