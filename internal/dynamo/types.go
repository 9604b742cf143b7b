package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3-component real vector in world units.
type Vec = r3.Vec

// State is the full position/velocity state of a set of point masses,
// stored as two flat buffers of equal length.
type State struct {
	Pos []Vec
	Vel []Vec
}

func NewState(n int) State {
	return State{
		Pos: make([]Vec, n),
		Vel: make([]Vec, n),
	}
}

func (s State) Len() int { return len(s.Pos) }

func (s State) Clone() State {
	c := NewState(len(s.Pos))
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	return c
}

func (s State) IsValid() bool {
	for i := range s.Pos {
		if !finite(s.Pos[i]) || !finite(s.Vel[i]) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute position component.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, p := range s.Pos {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	}
	return m
}

func finite(v Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// System computes one acceleration per point for a given state.
type System interface {
	Accelerations(s State, out []Vec)
}

// Integrator advances a state in place by one timestep.
type Integrator interface {
	Step(sys System, s *State, dt float64)
}

type Metric interface {
	Name() string
	Observe(l *Lattice, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(l *Lattice, step int, t float64)
}
