package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with a stable machine-readable code.
type Error struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common planner scenarios.
var (
	ErrDataInsufficient = New("DATA_INSUFFICIENT", http.StatusUnprocessableEntity, "projects, instructors, classrooms and timeslots must all be non-empty")
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotInitialized   = New("NOT_INITIALIZED", http.StatusConflict, "planner has no problem instance loaded")
	ErrUnknownAlgorithm = New("UNKNOWN_ALGORITHM", http.StatusBadRequest, "unknown optimization algorithm")
	ErrSolverFailure    = New("SOLVER_FAILURE", http.StatusInternalServerError, "linear solver reported failure")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal planner error")
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
