package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a parameter set or run configuration that
	// cannot be simulated. Reported before the first sample.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrSingularField indicates the field evaluation produced NaN or Inf,
	// e.g. a zero coil radius with the projectile exactly on a coil face.
	ErrSingularField = errors.New("dynamo: singular field evaluation")

	// ErrInvalidState indicates the integrated state is no longer finite.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
