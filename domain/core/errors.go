package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Registry errors
	ErrUnknownVariable = errors.New("unknown variable")
	ErrDomain          = errors.New("value outside transform domain")
	ErrInvalidSpec     = errors.New("invalid variable spec")

	// Model errors
	ErrDimensionMismatch           = errors.New("covariate/coefficient dimension mismatch")
	ErrInsufficientUncertaintyData = errors.New("fitted model has no usable uncertainty representation")
	ErrInvalidModel                = errors.New("invalid fitted model")

	// Simulation errors
	ErrInvalidDrawCount = errors.New("draw count must be a positive integer")
	ErrNonAxisVariable  = errors.New("variable is not axis-eligible")
	ErrEmptyGrid        = errors.New("sweep grid needs at least 2 points")

	// Persistence errors
	ErrNotFound      = errors.New("resource not found")
	ErrModelNotFound = fmt.Errorf("%w: fitted model", ErrNotFound)
	ErrSpecNotFound  = fmt.Errorf("%w: variable spec table", ErrNotFound)
)

// NewUnknownVariableError identifies the unregistered variable by id.
func NewUnknownVariableError(varID string) error {
	return fmt.Errorf("%w: %q", ErrUnknownVariable, varID)
}

// NewDomainError reports a transform input outside the valid domain.
func NewDomainError(varID string, value float64, reason string) error {
	return fmt.Errorf("%w: variable %q at %v: %s", ErrDomain, varID, value, reason)
}

// NewDimensionMismatchError reports a missing or extraneous predictor.
func NewDimensionMismatchError(predictor string, reason string) error {
	return fmt.Errorf("%w: predictor %q: %s", ErrDimensionMismatch, predictor, reason)
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
