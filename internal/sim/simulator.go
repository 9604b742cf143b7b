package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/jellosim/internal/compute"
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
)

// Simulator repeatedly advances one lattice. It is not safe for concurrent
// use; the integrator's scratch buffers are reused between steps but never
// carry information from one step to the next.
type Simulator struct {
	params     *dynamo.Params
	integrator dynamo.Integrator
	backend    compute.Backend
	model      *physics.Jello
	system     dynamo.System
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(params *dynamo.Params) *Simulator {
	return &Simulator{
		params:     params,
		integrator: stepper(params.Integrator),
		backend:    compute.Serial{},
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() *dynamo.Params { return s.params }

// SetBackend changes how accelerations are evaluated. Results do not
// depend on the backend.
func (s *Simulator) SetBackend(b compute.Backend) {
	s.backend = b
	s.model = nil
}

// Step advances l by n timesteps.
func (s *Simulator) Step(l *dynamo.Lattice, n int) {
	if s.model == nil || s.model.N() != l.N {
		s.model = physics.NewJello(l.N, s.params)
		s.system = compute.System(s.backend, s.model)
	}
	for i := 0; i < n; i++ {
		s.integrator.Step(s.system, &l.State, s.params.Dt)
	}
}

func (s *Simulator) Run(ctx context.Context, l *dynamo.Lattice, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	every := cfg.Every
	if every == 0 {
		every = max(s.params.Substeps, 1)
	}

	result := &Result{
		Columns: make([]string, 0, len(s.metrics)),
		Frames:  make([]Frame, 0, cfg.Steps/every+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Columns = append(result.Columns, m.Name())
	}

	result.Frames = append(result.Frames, s.observe(l, 0, 0))

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		s.Step(l, 1)
		t := float64(i) * s.params.Dt
		result.StepsTaken++

		if err := CheckState(l, cfg.Bound); err != nil {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, Wrapped: err})
			break
		}

		if i%every == 0 || i == cfg.Steps {
			result.Frames = append(result.Frames, s.observe(l, i, t))
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) observe(l *dynamo.Lattice, step int, t float64) Frame {
	f := Frame{Step: step, Time: t, Values: make([]float64, len(s.metrics))}
	for i, m := range s.metrics {
		m.Observe(l, t)
		f.Values[i] = m.Value()
	}
	for _, obs := range s.observers {
		obs.OnStep(l, step, t)
	}
	return f
}

func (s *Simulator) finish(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// CheckState is the between-steps divergence check; the force models
// themselves never inspect the state for blow-up.
func CheckState(l *dynamo.Lattice, bound float64) error {
	if !l.IsValid() {
		return dynamo.ErrInvalidState
	}
	if bound <= 0 {
		return nil
	}
	for idx, p := range l.Pos {
		if math.Abs(p.X) > bound || math.Abs(p.Y) > bound || math.Abs(p.Z) > bound {
			i, j, k := l.Coords(idx)
			return fmt.Errorf("%w: point (%d,%d,%d) beyond %g", dynamo.ErrUnstable, i, j, k, bound)
		}
	}
	return nil
}
