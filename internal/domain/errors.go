package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeUnauthenticated ErrCode = "unauthenticated"
	CodeForbidden       ErrCode = "forbidden"
	CodeValidation      ErrCode = "validation_error"
	CodeNotFound        ErrCode = "not_found"
	CodeAlreadyBooked   ErrCode = "already_booked"
	CodeUnavailable     ErrCode = "unavailable"
)

// AppError is the structured error every operation returns on failure.
// Code is stable and drives the HTTP status mapping; Meta carries
// field-level details for validation failures; Cause keeps the wrapped
// storage error for logs only.
type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func (e *AppError) Unwrap() error { return e.Cause }

func ErrUnauthenticated(msg string) error {
	return &AppError{Code: CodeUnauthenticated, Message: msg}
}

func ErrForbidden(msg string) error { return &AppError{Code: CodeForbidden, Message: msg} }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }

func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}

func ErrNotFound(msg string) error { return &AppError{Code: CodeNotFound, Message: msg} }

func ErrAlreadyBooked() error {
	return &AppError{Code: CodeAlreadyBooked, Message: "already booked for this event"}
}

func ErrUnavailable(cause error) error {
	return &AppError{Code: CodeUnavailable, Message: "storage unavailable", Cause: cause}
}

// CodeOf extracts the error code, or empty for non-AppError errors.
func CodeOf(err error) ErrCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrCode) bool {
	return CodeOf(err) == code
}
