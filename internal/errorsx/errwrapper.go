// Package errorsx contains the classified error type returned by every
// stage of a probe and the helpers that build it.
package errorsx

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Operations that may fail.
const (
	// ResolveOperation is the DNS resolution step.
	ResolveOperation = "resolve"

	// ConnectOperation is the TCP connect step.
	ConnectOperation = "connect"

	// TLSHandshakeOperation is the TLS handshake step.
	TLSHandshakeOperation = "tls_handshake"

	// HTTPRoundTripOperation is sending the request and reading the response.
	HTTPRoundTripOperation = "http_round_trip"

	// RedirectOperation is following a redirect response.
	RedirectOperation = "redirect"

	// ParseOperation is parsing user input.
	ParseOperation = "parse"

	// TopLevelOperation is used when no other operation applies.
	TopLevelOperation = "top_level"
)

// ErrWrapper is a classified error. Error returns the user facing
// message while WrappedErr, when not nil, keeps the underlying cause.
type ErrWrapper struct {
	// Class is the error category.
	Class Class

	// Operation is the operation that failed.
	Operation string

	// Message is the human readable message.
	Message string

	// WrappedErr is the error that we're wrapping, if any.
	WrappedErr error
}

// Error implements error.
func (e *ErrWrapper) Error() string {
	return e.Message
}

// Unwrap allows to access the underlying error.
func (e *ErrWrapper) Unwrap() error {
	return e.WrappedErr
}

// MarshalJSON converts an ErrWrapper to a JSON value.
func (e *ErrWrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"class":     e.Class.Tag(),
		"operation": e.Operation,
		"message":   e.Message,
	})
}

// New creates a new ErrWrapper without an underlying cause.
func New(class Class, operation string, format string, v ...any) *ErrWrapper {
	return &ErrWrapper{
		Class:     class,
		Operation: operation,
		Message:   fmt.Sprintf(format, v...),
	}
}

// Wrap creates a new ErrWrapper wrapping err. If err is already an
// ErrWrapper, Wrap returns it unchanged so that the deepest
// classification wins.
//
// This function panics if err is nil.
func Wrap(class Class, operation string, err error, format string, v ...any) *ErrWrapper {
	if err == nil {
		panic("errorsx: Wrap called with a nil error")
	}
	var wrapper *ErrWrapper
	if errors.As(err, &wrapper) {
		return wrapper
	}
	return &ErrWrapper{
		Class:      class,
		Operation:  operation,
		Message:    fmt.Sprintf(format, v...),
		WrappedErr: err,
	}
}

// NewTimeout returns the error used when operation exceeds timeout.
func NewTimeout(operation string, timeout time.Duration) *ErrWrapper {
	return New(ClassTimeout, operation, "operation timed out after %s", timeout)
}

// ClassOf returns the class of err. Errors that are not an
// ErrWrapper belong to ClassOther.
func ClassOf(err error) Class {
	var wrapper *ErrWrapper
	if errors.As(err, &wrapper) {
		return wrapper.Class
	}
	return ClassOther
}

// ExitCode returns the process exit code for err, zero when err is nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return ClassOf(err).ExitCode()
}

// Format returns the single line "error[TAG]: message" we print on stderr.
func Format(err error) string {
	return fmt.Sprintf("error[%s]: %s", ClassOf(err).Tag(), err.Error())
}
