package errors

import (
	stderrors "errors"
	"fmt"

	"casesim/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// CodeFor maps domain sentinel errors to stable API error codes.
func CodeFor(err error) string {
	switch {
	case stderrors.Is(err, core.ErrUnknownVariable):
		return "UNKNOWN_VARIABLE"
	case stderrors.Is(err, core.ErrDomain):
		return "DOMAIN_ERROR"
	case stderrors.Is(err, core.ErrDimensionMismatch):
		return "DIMENSION_MISMATCH"
	case stderrors.Is(err, core.ErrInsufficientUncertaintyData):
		return "INSUFFICIENT_UNCERTAINTY_DATA"
	case stderrors.Is(err, core.ErrInvalidDrawCount):
		return "INVALID_DRAW_COUNT"
	case stderrors.Is(err, core.ErrNonAxisVariable):
		return "NON_AXIS_VARIABLE"
	case stderrors.Is(err, core.ErrEmptyGrid):
		return "EMPTY_GRID"
	case stderrors.Is(err, core.ErrInvalidSpec):
		return "INVALID_SPEC"
	case stderrors.Is(err, core.ErrInvalidModel):
		return "INVALID_MODEL"
	case core.IsNotFoundError(err):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// IsValidation reports whether an error stems from invalid caller input
// rather than an internal failure.
func IsValidation(err error) bool {
	code := CodeFor(err)
	return code != "INTERNAL_ERROR" && code != "NOT_FOUND"
}
