// Package errs defines the business error taxonomy shared by services and
// handlers. Every user visible failure carries a stable numeric code next to
// the HTTP status, so clients can branch on the code without parsing messages.
package errs

import (
	"errors"
	"net/http"
)

// Stable business codes. These are part of the API contract.
const (
	CodeValidation          = 40002
	CodeUserNotFound        = 40004
	CodePasswordMismatch    = 40005
	CodeInvalidAccessToken  = 40101
	CodeInvalidRefreshToken = 40107
	CodeRefreshTokenExpired = 40108
	CodeForbidden           = 40301
	CodeNotFound            = 40401
	CodeConflict            = 40901
	CodeRateLimited         = 42901
	CodeInternal            = 50001
)

type Error struct {
	Code     int    // stable business code
	HTTPCode int    // transport status
	Message  string // human readable, safe to show to callers
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, HTTPCode: http.StatusBadRequest, Message: msg}
}

// UserNotFound and PasswordMismatch keep distinct business codes but share
// the 401 status, so the HTTP layer leaks nothing beyond "login failed".
func UserNotFound() *Error {
	return &Error{Code: CodeUserNotFound, HTTPCode: http.StatusUnauthorized, Message: "user not found"}
}

func PasswordMismatch() *Error {
	return &Error{Code: CodePasswordMismatch, HTTPCode: http.StatusUnauthorized, Message: "wrong password"}
}

func InvalidAccessToken() *Error {
	return &Error{Code: CodeInvalidAccessToken, HTTPCode: http.StatusUnauthorized, Message: "invalid access token"}
}

func InvalidRefreshToken() *Error {
	return &Error{Code: CodeInvalidRefreshToken, HTTPCode: http.StatusUnauthorized, Message: "invalid refresh token"}
}

func RefreshTokenExpired() *Error {
	return &Error{Code: CodeRefreshTokenExpired, HTTPCode: http.StatusUnauthorized, Message: "refresh token expired"}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, HTTPCode: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, HTTPCode: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, HTTPCode: http.StatusConflict, Message: msg}
}

func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, HTTPCode: http.StatusTooManyRequests, Message: "too many requests, try again later"}
}

func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, HTTPCode: http.StatusInternalServerError, Message: msg}
}

// From returns err as an *Error, wrapping unknown errors as Internal so raw
// storage or driver errors never reach a caller.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error")
}
