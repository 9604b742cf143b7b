package sim

import (
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/integrators"
	"github.com/san-kum/jellosim/internal/physics"
)

// Advance moves l forward by exactly one p.Dt step. Euler is used when
// p.Integrator is dynamo.Euler and RK4 otherwise. All scratch memory is
// local to the call, so equal inputs always produce bit-identical outputs.
func Advance(l *dynamo.Lattice, p *dynamo.Params) {
	stepper(p.Integrator).Step(physics.NewJello(l.N, p), &l.State, p.Dt)
}

func stepper(kind dynamo.IntegratorKind) dynamo.Integrator {
	if kind != dynamo.Euler {
		kind = dynamo.RK4
	}
	integ, _ := integrators.New(kind)
	return integ
}
