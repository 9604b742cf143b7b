package sim

import (
	"fmt"

	"github.com/san-kum/jellosim/internal/dynamo"
)

type Config struct {
	// Steps is the number of timesteps to run.
	Steps int
	// Every is the number of timesteps between recorded frames. Zero means
	// the world's Substeps.
	Every int
	// Bound stops the run once any position component exceeds it in
	// magnitude. Zero disables the check; NaN/Inf always stops the run.
	Bound float64
}

func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.Every < 0 {
		return fmt.Errorf("%w: every must be non-negative, got %d", dynamo.ErrParameterBounds, c.Every)
	}
	if c.Bound < 0 {
		return fmt.Errorf("%w: bound must be non-negative, got %g", dynamo.ErrParameterBounds, c.Bound)
	}
	return nil
}

// Frame is one recorded sample of the metric values.
type Frame struct {
	Step   int
	Time   float64
	Values []float64
}

type Result struct {
	// Columns names the entries of every Frame.Values, in metric order.
	Columns    []string
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Stopped reports whether the run ended early because of an unstable or
// invalid state.
func (r *Result) Stopped() bool {
	return len(r.Errors) > 0
}
