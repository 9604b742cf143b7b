package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors. The physics kernel itself never returns them; they are
// raised by loaders and by drivers that inspect the state between steps.
var (
	// ErrInvalidState indicates a state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the lattice left the configured bound.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates buffers whose sizes disagree.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrMalformedWorld indicates a world file that cannot be parsed.
	ErrMalformedWorld = errors.New("dynamo: malformed world file")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
