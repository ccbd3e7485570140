package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind names a class of failure the API exposes to clients.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindForbidden          ErrorKind = "Forbidden"
	KindNotFound           ErrorKind = "NotFound"
	KindUnprocessable      ErrorKind = "Unprocessable"
	KindConflict           ErrorKind = "Conflict"
	KindInvalidTransition  ErrorKind = "InvalidTransition"
	KindTooManyRequests    ErrorKind = "TooManyRequests"
	KindInternal           ErrorKind = "Internal"
)

// AppError is a failure with a message that is safe to show the user.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrForbidden) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidCredentials = &AppError{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized}
	ErrForbidden          = &AppError{Kind: KindForbidden}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrUnprocessable      = &AppError{Kind: KindUnprocessable}
	ErrConflict           = &AppError{Kind: KindConflict}
	ErrInvalidTransition  = &AppError{Kind: KindInvalidTransition}
)

func Unauthorized(format string, args ...interface{}) error {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unprocessable(format string, args ...interface{}) error {
	return &AppError{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...interface{}) error {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func TooManyRequests(format string, args ...interface{}) error {
	return &AppError{Kind: KindTooManyRequests, Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps an error to its HTTP status. Anything that is not an
// AppError is an internal error.
func StatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
