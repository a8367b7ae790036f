// Package httperr defines the request error taxonomy and its mapping onto
// HTTP status codes. Services return these errors; handlers convert them with
// ToHTTP so every route reports failures the same way.
package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a request failure.
type Kind int

const (
	// Unexpected is a storage or internal failure (500).
	Unexpected Kind = iota
	// Unauthenticated is a missing, malformed, or expired credential (401).
	Unauthenticated
	// Forbidden is a valid credential with an insufficient role (403).
	Forbidden
	// NotFound is a missing account, provider, or appointment (404).
	NotFound
	// Validation is a schema constraint violation (400).
	Validation
	// Conflict is a duplicate email or an already-booked slot (409).
	Conflict
)

// Error carries a Kind and a client-safe message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Unauthenticatedf(format string, args ...interface{}) *Error {
	return New(Unauthenticated, format, args...)
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return New(Forbidden, format, args...)
}

func NotFoundf(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}

func Validationf(format string, args ...interface{}) *Error {
	return New(Validation, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return New(Conflict, format, args...)
}

// KindOf returns the Kind of err, or Unexpected for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts err to an echo HTTPError. Errors outside the taxonomy become
// a generic 500 so internal detail is not leaked to clients.
func ToHTTP(err error) *echo.HTTPError {
	var e *Error
	if errors.As(err, &e) {
		return echo.NewHTTPError(Status(e.Kind), e.Msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
