package recipefeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Application error codes.
const (
	ECONFLICT       = "conflict"
	EINTERNAL       = "internal"
	EINVALID        = "invalid"
	ENOTFOUND       = "not_found"
	ENOTIMPLEMENTED = "not_implemented"
	EPARSE          = "parse"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("recipefeed error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NetworkError is a transport-level fetch failure (timeout, refused
// connection, DNS failure). It is always retryable.
type NetworkError struct {
	URL string
	// Kind is the Go type of the underlying cause, e.g. "*net.DNSError".
	Kind string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying cause was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// NotFound reports whether the status confirms the resource does not exist.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

// IsPermanent reports whether err must not be retried.
//
// Permanent: a not-found status, ENOTFOUND, EPARSE, EINVALID and context
// cancellation. Everything else, including network errors and other
// non-2xx statuses, is transient.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var netErr *NetworkError
		// A per-request timeout surfaces as DeadlineExceeded inside a NetworkError.
		return !errors.As(err, &netErr)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.NotFound()
	}
	switch ErrorCode(err) {
	case ENOTFOUND, EPARSE, EINVALID:
		return true
	}
	return false
}
