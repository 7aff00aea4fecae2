package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. Each kind maps to exactly one HTTP status.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindDuplicate          Kind = "DUPLICATE"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindUpstream           Kind = "UPSTREAM_ERROR"
	KindInternal           Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindForbidden:          http.StatusForbidden,
	KindDuplicate:          http.StatusConflict,
	KindPreconditionFailed: http.StatusPreconditionFailed,
	KindInvalidTransition:  http.StatusConflict,
	KindUpstream:           http.StatusBadGateway,
	KindInternal:           http.StatusInternalServerError,
}

// Error is the error type returned by the catalog engine and its services.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the HTTP status code for the error kind.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Code returns the machine readable error code.
func (e *Error) Code() string {
	return string(e.Kind)
}

// WithDetail returns a copy of the error carrying an extra detail entry.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, cause: e.cause}
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func Duplicate(format string, args ...interface{}) *Error {
	return newError(KindDuplicate, format, args...)
}

func PreconditionFailed(format string, args ...interface{}) *Error {
	return newError(KindPreconditionFailed, format, args...)
}

// InvalidTransition reports a state change that is not an edge of the lifecycle graph.
func InvalidTransition(entity, from, to string) *Error {
	return newError(KindInvalidTransition, "%s cannot move from %s to %s", entity, from, to).
		WithDetail("from", from).
		WithDetail("to", to)
}

// Upstream wraps a failure of an external collaborator such as the asset store.
func Upstream(cause error, format string, args ...interface{}) *Error {
	e := newError(KindUpstream, format, args...)
	e.cause = cause
	return e
}

// Internal wraps an unexpected infrastructure failure.
func Internal(cause error, format string, args ...interface{}) *Error {
	e := newError(KindInternal, format, args...)
	e.cause = cause
	return e
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// IsExpected reports whether err is a business rule failure that must not be retried.
func IsExpected(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindForbidden, KindDuplicate,
		KindPreconditionFailed, KindInvalidTransition:
		return true
	}
	return false
}
