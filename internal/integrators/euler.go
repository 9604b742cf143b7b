package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// Euler is the explicit first-order integrator. Positions advance with the
// velocity from the start of the step, then velocities advance with the
// acceleration.
type Euler struct {
	acc []dynamo.Vec
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, s *dynamo.State, dt float64) {
	n := s.Len()
	if len(e.acc) != n {
		e.acc = make([]dynamo.Vec, n)
	}

	sys.Accelerations(*s, e.acc)

	for i := 0; i < n; i++ {
		s.Pos[i] = r3.Add(s.Pos[i], r3.Scale(dt, s.Vel[i]))
		s.Vel[i] = r3.Add(s.Vel[i], r3.Scale(dt, e.acc[i]))
	}
}
