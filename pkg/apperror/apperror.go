package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the delivery layer can pick a status code
// without knowing every sentinel error.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindCapacityExceeded  Kind = "CAPACITY_EXCEEDED"
	KindValidation        Kind = "VALIDATION_FAILED"
)

// Error is a typed, recoverable business failure. It wraps a sentinel
// error so callers can still use errors.Is against package-level vars.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error of the given kind around a sentinel.
func New(kind Kind, cause error, message string, details map[string]interface{}) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{
		Kind:    kind,
		Message: message,
		Details: details,
		cause:   cause,
	}
}

func NotFound(cause error, entity string, id interface{}) *Error {
	return New(KindNotFound, cause, fmt.Sprintf("%s not found: %v", entity, id), map[string]interface{}{
		"entity": entity,
		"id":     id,
	})
}

func Conflict(cause error, message string, details map[string]interface{}) *Error {
	return New(KindConflict, cause, message, details)
}

func InvalidTransition(cause error, message string, details map[string]interface{}) *Error {
	return New(KindInvalidTransition, cause, message, details)
}

func CapacityExceeded(cause error, message string, details map[string]interface{}) *Error {
	return New(KindCapacityExceeded, cause, message, details)
}

func Validation(cause error, message string, details map[string]interface{}) *Error {
	return New(KindValidation, cause, message, details)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not a business failure.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}
