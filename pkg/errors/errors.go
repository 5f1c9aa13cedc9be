package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeConsistency ErrorType = "consistency"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is the single error type used across the fetcher. Type carries the
// taxonomy, Code an HTTP status when one was involved.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given type.
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given type around a cause. The status code of
// a wrapped *Error is preserved.
func Wrap(t ErrorType, err error, format string, args ...interface{}) *Error {
	wrapped := &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
	var inner *Error
	if errors.As(err, &inner) {
		wrapped.Code = inner.Code
	}
	return wrapped
}

// NotFound reports a comic that has no archive entry or no usable page.
func NotFound(format string, args ...interface{}) *Error {
	return New(ErrorTypeNotFound, format, args...)
}

// Parse reports a structurally malformed cache file.
func Parse(line int, format string, args ...interface{}) *Error {
	return New(ErrorTypeParsing, "line %d: %s", line, fmt.Sprintf(format, args...))
}

// Consistency reports a page whose markup contradicts the request.
func Consistency(format string, args ...interface{}) *Error {
	return New(ErrorTypeConsistency, format, args...)
}

// TypeOf returns the type of the outermost *Error in the chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type.
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsNotFound reports a negative result rather than a failure.
func IsNotFound(err error) bool {
	return Is(err, ErrorTypeNotFound)
}

// IsNetwork reports whether err belongs to the network error family.
func IsNetwork(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Classify maps a transport error and HTTP status to a typed error.
func Classify(err error, statusCode int) *Error {
	if err == nil && statusCode < http.StatusBadRequest {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	}

	switch {
	case statusCode == http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: statusCode, Err: err}
	case statusCode == http.StatusTooManyRequests:
		return &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: statusCode, Err: err}
	case statusCode >= http.StatusInternalServerError:
		return &Error{Type: ErrorTypeServerError, Message: "server error", Code: statusCode, Err: err}
	case statusCode >= http.StatusBadRequest:
		return &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("unexpected status code: %d", statusCode), Code: statusCode, Err: err}
	}

	return &Error{Type: ErrorTypeNetwork, Message: "request failed", Err: err}
}
