package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type.
// A target with an empty Type matches any *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == "" || t.Type == e.Type
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// Wrap creates a typed error around a cause
func Wrap(errorType ErrorType, code int, err error, message string) *Error {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &Error{
		Type:    errorType,
		Message: message,
		Code:    code,
		Err:     err,
	}
}

// TypeForStatus maps an HTTP status code to an error type.
// Statuses below 400 map to the empty type.
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode < 400:
		return ""
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// FromStatus builds a typed error for a non-success HTTP status, or nil
func FromStatus(statusCode int) *Error {
	errorType := TypeForStatus(statusCode)
	if errorType == "" {
		return nil
	}

	var message string
	switch errorType {
	case ErrorTypeAuth:
		message = "authentication required"
	case ErrorTypeNotFound:
		message = "resource not found"
	case ErrorTypeRateLimit:
		message = "rate limit exceeded"
	case ErrorTypeServerError:
		message = "server error"
	default:
		message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}

	return &Error{Type: errorType, Message: message, Code: statusCode}
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Type == errorType
}
