package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// KindNetwork means no usable response was received.
	KindNetwork ErrorKind = "network"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindParsing means a 2xx body could not be decoded.
	KindParsing ErrorKind = "parsing"
	// KindInvalidInput means the request was rejected before being sent.
	KindInvalidInput ErrorKind = "invalid_input"
)

// ErrBodyTooLarge is wrapped when a response body is longer than the task accepts.
var ErrBodyTooLarge = errors.New("response body too large")

// Error is the failure half of a Response.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is the HTTP status, or 0 when none was received.
	Status int
	// Body is the raw response body for KindHTTP and KindParsing.
	Body string
	Err  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status, or 0.
func (e *Error) StatusCode() int { return e.Status }

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func hasStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindHTTP && e.Status == status
}

// IsInvalidAPIKey reports whether the server rejected the API key.
func IsInvalidAPIKey(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }
