package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API-facing error carrying the status it maps to.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error with the same code, so clones and wraps of a
// predefined error still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors.
var (
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict          = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrInvalidRange      = New("INVALID_RANGE", http.StatusBadRequest, "start date is after end date")
	ErrInvalidAllocation = New("INVALID_ALLOCATION", http.StatusBadRequest, "allocation must be a positive finite fraction")
	ErrMissingReference  = New("MISSING_REFERENCE", http.StatusUnprocessableEntity, "assignment references an unknown person or project")
	ErrDragInProgress    = New("DRAG_IN_PROGRESS", http.StatusConflict, "another drag session is active")
	ErrCacheMiss         = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrUnsupportedFormat = New("UNSUPPORTED_FORMAT", http.StatusBadRequest, "unsupported export format")
	ErrInvalidToken      = New("INVALID_TOKEN", http.StatusForbidden, "invalid or expired download token")
	ErrExportNotReady    = New("EXPORT_NOT_READY", http.StatusConflict, "export is not ready")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of err carrying a structured payload.
func WithDetails(err *Error, details interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}
