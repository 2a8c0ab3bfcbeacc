// internal/app/system/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error and determines the HTTP status the
// route layer responds with.
type Kind int

const (
	// Unauthenticated: no token, invalid token, or session mismatch.
	Unauthenticated Kind = iota
	// Forbidden: wrong role or ownership mismatch.
	Forbidden
	// NotFound: the requested entity does not exist.
	NotFound
	// Conflict: duplicate connection, duplicate user, etc.
	Conflict
	// Validation: missing or malformed request fields.
	Validation
	// Upstream: a third-party dependency (e.g. the mail relay) failed.
	Upstream
	// Internal: unexpected failure; logged server-side, generic message
	// returned to the client.
	Internal
)

// Error is the domain error services return. The route layer maps Kind to a
// status code and sends Message to the client; Err (the cause) is only ever
// logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Validation:
		return http.StatusBadRequest
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind with a user-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a user-safe message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromCause returns err as an *Error if it is one, or wraps it as Internal
// with the given fallback message otherwise.
func FromCause(err error, fallback string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Wrap(Internal, fallback, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
