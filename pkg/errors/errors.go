// Package errors carries the error kinds services return and handlers turn
// into HTTP statuses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode int

const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
	// ErrUnavailable means BPJS or SATUSEHAT could not be reached.
	ErrUnavailable
)

var statusByCode = map[ErrorCode]int{
	ErrNotFound:     http.StatusNotFound,
	ErrBadRequest:   http.StatusBadRequest,
	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrInternal:     http.StatusInternalServerError,
	ErrConflict:     http.StatusConflict,
	ErrUnavailable:  http.StatusBadGateway,
}

// AppError pairs a user-facing message with the underlying cause, which is
// kept out of responses.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func newError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode is 500 for unknown codes.
func (e *AppError) StatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewNotFound renders as "<resource> not found".
func NewNotFound(resource string, err error) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource), err)
}

func NewBadRequest(message string, err error) *AppError {
	return newError(ErrBadRequest, message, err)
}

func NewInternal(err error) *AppError {
	return newError(ErrInternal, "internal server error", err)
}

func NewConflict(message string, err error) *AppError {
	return newError(ErrConflict, message, err)
}

// NewUnavailable reports a failed call to an external integration.
func NewUnavailable(service string, err error) *AppError {
	return newError(ErrUnavailable, service+" unavailable", err)
}

func Unauthorized(err error) *AppError {
	return newError(ErrUnauthorized, "unauthorized", err)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message, nil)
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
