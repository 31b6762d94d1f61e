package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of the transport status code.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindUpstream     Kind = "upstream"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

type AppError struct {
	Code    int         `json:"code"`
	Kind    Kind        `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation rejects input before any state change. details usually carries
// the per-field messages from validation.FormatValidationErrors.
func Validation(message string, details interface{}) *AppError {
	e := New(http.StatusBadRequest, KindValidation, message, nil)
	e.Details = details
	return e
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// Unauthenticated is returned when no principal was presented at all.
func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, message, nil)
}

// Unauthorized is returned when the gate denied a known principal.
func Unauthorized(message string) *AppError {
	return New(http.StatusForbidden, KindUnauthorized, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Upstream(message string, err error) *AppError {
	return New(http.StatusBadGateway, KindUpstream, message, err)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, KindRateLimited, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}

// KindOf reports the Kind of err, or KindInternal for errors that are not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
