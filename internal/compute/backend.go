package compute

import (
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
)

// Backend evaluates the accelerations of every point of a jello model.
type Backend interface {
	Name() string
	Accelerations(model *physics.Jello, s dynamo.State, out []dynamo.Vec)
}

// Serial evaluates points one after another on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) Accelerations(model *physics.Jello, s dynamo.State, out []dynamo.Vec) {
	model.Accelerations(s, out)
}

// AutoSelectBackend picks the CPU worker backend for lattices large enough
// to amortise the goroutine overhead.
func AutoSelectBackend(n int) Backend {
	if n < 6 {
		return Serial{}
	}
	return NewCPUBackend()
}

// System binds a backend to a model so integrators can drive it.
func System(b Backend, model *physics.Jello) dynamo.System {
	return &system{backend: b, model: model}
}

type system struct {
	backend Backend
	model   *physics.Jello
}

func (s *system) Accelerations(st dynamo.State, out []dynamo.Vec) {
	s.backend.Accelerations(s.model, st, out)
}
