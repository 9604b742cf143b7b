package integrators

import (
	"fmt"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// New returns a fresh integrator of the given kind.
func New(kind dynamo.IntegratorKind) (dynamo.Integrator, error) {
	switch kind {
	case dynamo.Euler:
		return NewEuler(), nil
	case dynamo.RK4:
		return NewRK4(), nil
	}
	return nil, fmt.Errorf("%w: %v", dynamo.ErrUnknownIntegrator, kind)
}

// Names lists the integrator names accepted by dynamo.ParseIntegrator.
func Names() []string {
	return []string{dynamo.Euler.String(), dynamo.RK4.String()}
}
