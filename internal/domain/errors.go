package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure so callers can tell an empty result, an
// invalid request and a server fault apart.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidation       ErrorCode = "VALIDATION"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"
	CodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"
	CodeStorage          ErrorCode = "STORAGE"
)

// Error is the structured error returned by services and repositories.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Sentinels for errors.Is. They match any *Error carrying the same code.
var (
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrValidation       = &Error{Code: CodeValidation}
	ErrAlreadyExists    = &Error{Code: CodeAlreadyExists}
	ErrQuotaExceeded    = &Error{Code: CodeQuotaExceeded}
	ErrInsufficientData = &Error{Code: CodeInsufficientData}
	ErrStorage          = &Error{Code: CodeStorage}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates a duplicate-entry error.
func AlreadyExists(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// QuotaExceeded creates a daily-limit error.
func QuotaExceeded(format string, args ...any) *Error {
	return &Error{Code: CodeQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

// InsufficientData creates an error for operations that need more rows than exist.
func InsufficientData(format string, args ...any) *Error {
	return &Error{Code: CodeInsufficientData, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: CodeStorage, Message: op, Cause: err}
}
