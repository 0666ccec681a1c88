// Package apperr defines the typed failures the domain services surface to
// the HTTP boundary. Services construct them; the boundary maps each kind to
// a status code and response envelope without inspecting message text.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalidArgument
	KindInvalidState
	KindInsufficientFunds
	KindInsufficientStock
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed, expected domain failure.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
}

func (e *Error) Error() string { return e.Message }

// StatusCode returns the HTTP status this failure maps to.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgument, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

func InsufficientFunds(format string, args ...interface{}) *Error {
	return newError(KindInsufficientFunds, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newError(KindInsufficientStock, format, args...)
}

// Validation builds a field-level validation failure.
func Validation(details ...FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Validation Error",
		Details: details,
	}
}
