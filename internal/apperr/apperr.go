// Package apperr carries the HTTP status and client-facing message of an
// error from the service layer to the error responder middleware.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func Validation(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

// Conflict is reported as 400, matching the public API contract for
// duplicates.
func Conflict(message string) *Error { return New(http.StatusBadRequest, message) }

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// From returns the typed error in err's chain, or an Internal wrapper.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
