package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeFetchFailed  = "FETCH_FAILED"
	CodeWriteFailed  = "WRITE_FAILED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// FetchFailed reports a non-2xx response from the upstream order listing or a
// single-order GET. Not retried beyond the adapter's 429 backoff.
func FetchFailed(message string, err error) *AppError {
	return &AppError{
		Code:       CodeFetchFailed,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func FetchFailedStatus(status int, body string) *AppError {
	return &AppError{
		Code:       CodeFetchFailed,
		Message:    fmt.Sprintf("upstream fetch returned status %d", status),
		HTTPStatus: http.StatusBadGateway,
		Details: map[string]any{
			"upstream_status": status,
			"upstream_body":   body,
		},
	}
}

// WriteFailed reports a non-2xx response on the order PUT during an attendance
// update. The upstream status and body ride along for diagnostics.
func WriteFailed(status int, body string) *AppError {
	return &AppError{
		Code:       CodeWriteFailed,
		Message:    fmt.Sprintf("upstream write returned status %d", status),
		HTTPStatus: http.StatusBadGateway,
		Details: map[string]any{
			"upstream_status": status,
			"upstream_body":   body,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
