package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// RK4 is the classic four-stage Runge-Kutta integrator applied to the
// joint position/velocity system d/dt [p, v] = [v, a(p, v)].
type RK4 struct {
	k1, k2, k3, k4 stage
	acc            []dynamo.Vec
	scratch        dynamo.State
}

// stage holds dt-scaled position and velocity increments.
type stage struct {
	p, v []dynamo.Vec
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.acc) != n {
		r.k1 = newStage(n)
		r.k2 = newStage(n)
		r.k3 = newStage(n)
		r.k4 = newStage(n)
		r.acc = make([]dynamo.Vec, n)
		r.scratch = dynamo.NewState(n)
	}
}

func newStage(n int) stage {
	return stage{p: make([]dynamo.Vec, n), v: make([]dynamo.Vec, n)}
}

// eval fills k with dt*[v, a] evaluated at the given state.
func (r *RK4) eval(sys dynamo.System, at dynamo.State, k stage, dt float64) {
	sys.Accelerations(at, r.acc)
	for i := range r.acc {
		k.p[i] = r3.Scale(dt, at.Vel[i])
		k.v[i] = r3.Scale(dt, r.acc[i])
	}
}

// advanceScratch sets scratch = x0 + h*k.
func (r *RK4) advanceScratch(x0 dynamo.State, k stage, h float64) {
	for i := range x0.Pos {
		r.scratch.Pos[i] = r3.Add(x0.Pos[i], r3.Scale(h, k.p[i]))
		r.scratch.Vel[i] = r3.Add(x0.Vel[i], r3.Scale(h, k.v[i]))
	}
}

func (r *RK4) Step(sys dynamo.System, s *dynamo.State, dt float64) {
	n := s.Len()
	r.ensureScratch(n)

	r.eval(sys, *s, r.k1, dt)
	r.advanceScratch(*s, r.k1, 0.5)

	r.eval(sys, r.scratch, r.k2, dt)
	r.advanceScratch(*s, r.k2, 0.5)

	r.eval(sys, r.scratch, r.k3, dt)
	r.advanceScratch(*s, r.k3, 1.0)

	r.eval(sys, r.scratch, r.k4, dt)

	for i := 0; i < n; i++ {
		s.Pos[i] = r3.Add(combine(r.k1.p[i], r.k2.p[i], r.k3.p[i], r.k4.p[i]), s.Pos[i])
		s.Vel[i] = r3.Add(combine(r.k1.v[i], r.k2.v[i], r.k3.v[i], r.k4.v[i]), s.Vel[i])
	}
}

// combine returns (k1 + 2*k2 + 2*k3 + k4) / 6, summed as
// ((2*k2 + 2*k3) + k1 + k4) * (1/6).
func combine(k1, k2, k3, k4 dynamo.Vec) dynamo.Vec {
	sum := r3.Add(r3.Scale(2, k2), r3.Scale(2, k3))
	sum = r3.Add(sum, k1)
	sum = r3.Add(sum, k4)
	return r3.Scale(1.0/6, sum)
}
