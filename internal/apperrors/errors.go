// Package apperrors carries coded application errors from the domain packages
// up to the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine readable error code.
type Code string

const (
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeUnprocessable  Code = "UNPROCESSABLE"
	CodeModelFailed    Code = "MODEL_FAILED"
	CodeStorageFailed  Code = "STORAGE_FAILED"
	CodeDatabaseFailed Code = "DATABASE_FAILED"
	CodeInternal       Code = "INTERNAL"
)

// AppError is an error with a code, a client-facing message and an optional
// wrapped cause that is never shown to clients.
type AppError struct {
	Code      Code
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New returns an AppError without a cause.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap returns an AppError around err. Model, storage and database failures
// are marked retryable.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: isRetryableCode(code),
	}
}

func isRetryableCode(code Code) bool {
	switch code {
	case CodeModelFailed, CodeStorageFailed, CodeDatabaseFailed:
		return true
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnprocessable:
		return http.StatusUnprocessableEntity
	case CodeModelFailed, CodeStorageFailed:
		return http.StatusBadGateway
	case CodeDatabaseFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
