// Package apperr is the error taxonomy handlers return to the fiber error
// handler: it carries the HTTP status, a short title and a user facing message.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Title + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Title + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, title, msg string) *Error {
	return &Error{Status: status, Title: title, Message: msg}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, "Not found", msg)
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, "Conflict", msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", msg)
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, "Bad request", msg)
}

// Internal hides err from the client; the error handler logs it.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Title: "Internal server error", Message: msg, Err: err}
}

// Upstream reports a failed call to the image host or the AI service.
func Upstream(title, msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Title: title, Message: msg, Err: err}
}

// As is errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
