package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions for the estimation core
var (
	// Shape/ordering mismatches between matrices
	ErrDimension = errors.New("dimension mismatch")

	// Overlapping or asymmetric constraint masks
	ErrConstraintConflict = errors.New("constraint mask conflict")

	// Solver failed to reach tolerance within its iteration budget
	ErrConvergence = errors.New("solver did not converge")

	// Directed mask violates the declared topological order
	ErrOrdering = errors.New("topological order violation")

	// Variance-component estimate invalid (negative beyond tolerance)
	ErrDegenerateVariance = errors.New("degenerate variance component")

	// Edgeless network at high regularization; a warning-grade condition,
	// surfaced on results rather than returned as a failure
	ErrDegenerateFit = errors.New("degenerate fit: network has no edges")
)

// Error constructors with context. Every failure carries the offending
// dimensions or parameter values so the caller can correct the input.

func NewDimensionError(what string, got, want int) error {
	return fmt.Errorf("%w: %s: got %d, want %d", ErrDimension, what, got, want)
}

func NewShapeError(what string, rows, cols int) error {
	return fmt.Errorf("%w: %s has shape %dx%d", ErrDimension, what, rows, cols)
}

func NewConstraintConflictError(reason string, i, j int) error {
	return fmt.Errorf("%w: %s at entry (%d,%d)", ErrConstraintConflict, reason, i, j)
}

func NewConvergenceError(iterations int, tol float64) error {
	return fmt.Errorf("%w: after %d iterations (tolerance %g)", ErrConvergence, iterations, tol)
}

func NewOrderingError(from, to int) error {
	return fmt.Errorf("%w: mask edge %d->%d points against the declared order", ErrOrdering, from, to)
}

func NewDegenerateVarianceError(component string, value float64) error {
	return fmt.Errorf("%w: %s estimated as %g; fall back to the likelihood method or increase eta", ErrDegenerateVariance, component, value)
}

// Error checking helpers
func IsDimensionError(err error) bool {
	return errors.Is(err, ErrDimension)
}

func IsConstraintConflictError(err error) bool {
	return errors.Is(err, ErrConstraintConflict)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}

func IsOrderingError(err error) bool {
	return errors.Is(err, ErrOrdering)
}

func IsDegenerateVarianceError(err error) bool {
	return errors.Is(err, ErrDegenerateVariance)
}
