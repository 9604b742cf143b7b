package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/jellosim/internal/compute"
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/integrators"
	"github.com/san-kum/jellosim/internal/physics"
)

func testParams(kind dynamo.IntegratorKind) *dynamo.Params {
	return &dynamo.Params{
		Integrator: kind,
		Dt:         0.0005,
		Substeps:   1,
		KElastic:   100,
		DElastic:   0.1,
		KCollision: 400,
		DCollision: 0.25,
		Mass:       0.002,
	}
}

// stretchedCube is a 4³ lattice scaled by 1.2 along x and given a small
// velocity, so every step moves every point.
func stretchedCube() *dynamo.Lattice {
	l := dynamo.NewLattice(4)
	h := l.Spacing()
	l.Fill(func(i, j, k int) dynamo.Vec {
		return dynamo.Vec{X: 1.2 * float64(i) * h, Y: float64(j) * h, Z: float64(k) * h}
	})
	for idx := range l.Vel {
		l.Vel[idx] = dynamo.Vec{Y: 0.1}
	}
	return l
}

type stepCounter struct {
	count int
	last  float64
}

func (c *stepCounter) Name() string { return "count" }
func (c *stepCounter) Observe(l *dynamo.Lattice, t float64) {
	c.count++
	c.last = t
}
func (c *stepCounter) Value() float64 { return float64(c.count) }
func (c *stepCounter) Reset()         { c.count, c.last = 0, 0 }

func equalStates(a, b dynamo.State) bool {
	for i := range a.Pos {
		if a.Pos[i] != b.Pos[i] || a.Vel[i] != b.Vel[i] {
			return false
		}
	}
	return len(a.Pos) == len(b.Pos)
}

func TestAdvanceDeterministic(t *testing.T) {
	for _, kind := range []dynamo.IntegratorKind{dynamo.Euler, dynamo.RK4} {
		t.Run(kind.String(), func(t *testing.T) {
			p := testParams(kind)
			a := stretchedCube()
			b := stretchedCube()

			for i := 0; i < 5; i++ {
				Advance(a, p)
				Advance(b, p)
			}

			if !equalStates(a.State, b.State) {
				t.Error("identical inputs produced different outputs")
			}
			if equalStates(a.State, stretchedCube().State) {
				t.Error("advance did not change the state")
			}
		})
	}
}

func TestAdvanceSelectsIntegrator(t *testing.T) {
	tests := []struct {
		kind  dynamo.IntegratorKind
		integ dynamo.Integrator
	}{
		{dynamo.Euler, integrators.NewEuler()},
		{dynamo.RK4, integrators.NewRK4()},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p := testParams(tt.kind)
			got := stretchedCube()
			want := stretchedCube()

			Advance(got, p)
			tt.integ.Step(physics.NewJello(want.N, p), &want.State, p.Dt)

			if !equalStates(got.State, want.State) {
				t.Errorf("Advance with %v does not match the %v integrator", tt.kind, tt.kind)
			}
		})
	}
}

func TestSimulatorMatchesAdvance(t *testing.T) {
	p := testParams(dynamo.RK4)
	a := stretchedCube()
	b := stretchedCube()

	New(p).Step(a, 10)
	for i := 0; i < 10; i++ {
		Advance(b, p)
	}

	if !equalStates(a.State, b.State) {
		t.Error("simulator and Advance diverged")
	}
}

func TestSimulatorRunFrames(t *testing.T) {
	s := New(testParams(dynamo.Euler))
	counter := &stepCounter{}
	s.AddMetric(counter)

	result, err := s.Run(context.Background(), stretchedCube(), Config{Steps: 10, Every: 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	wantSteps := []int{0, 3, 6, 9, 10}
	if len(result.Frames) != len(wantSteps) {
		t.Fatalf("expected %d frames, got %d", len(wantSteps), len(result.Frames))
	}
	for i, f := range result.Frames {
		if f.Step != wantSteps[i] {
			t.Errorf("frame %d: expected step %d, got %d", i, wantSteps[i], f.Step)
		}
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Columns) != 1 || result.Columns[0] != "count" {
		t.Errorf("unexpected columns %v", result.Columns)
	}
	if result.Metrics["count"] != 5 {
		t.Errorf("expected 5 observations, got %v", result.Metrics["count"])
	}
	if result.Stopped() {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestSimulatorDefaultsToSubsteps(t *testing.T) {
	p := testParams(dynamo.Euler)
	p.Substeps = 4

	result, err := New(p).Run(context.Background(), stretchedCube(), Config{Steps: 8})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Frames) != 3 {
		t.Errorf("expected 3 frames, got %d", len(result.Frames))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(testParams(dynamo.Euler))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{Steps: 0}},
		{"negative steps", Config{Steps: -1}},
		{"negative every", Config{Steps: 1, Every: -1}},
		{"negative bound", Config{Steps: 1, Bound: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), stretchedCube(), tt.cfg)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorStopsOnDivergence(t *testing.T) {
	p := testParams(dynamo.Euler)
	p.KElastic = 1e6
	p.Dt = 0.01

	l := stretchedCube()
	result, err := New(p).Run(context.Background(), l, Config{Steps: 1000, Bound: 100})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !result.Stopped() {
		t.Fatal("expected the run to stop")
	}
	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected SimulationError, got %T", result.Errors[0])
	}
	if !errors.Is(simErr, dynamo.ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", simErr)
	}
	if result.StepsTaken >= 1000 {
		t.Errorf("expected early stop, took %d steps", result.StepsTaken)
	}
}

func TestSimulatorContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(testParams(dynamo.Euler)).Run(ctx, stretchedCube(), Config{Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("expected an empty partial result")
	}
}

func TestEnsemble(t *testing.T) {
	l0 := stretchedCube()
	euler := testParams(dynamo.Euler)
	rk4 := testParams(dynamo.RK4)

	e := NewEnsemble(func(*dynamo.Params) []dynamo.Metric {
		return []dynamo.Metric{&stepCounter{}}
	}, euler, rk4)

	results, err := e.Run(context.Background(), l0, Config{Steps: 4, Every: 2})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 4 {
			t.Errorf("member %d: expected 4 steps, got %d", i, r.StepsTaken)
		}
	}

	if !equalStates(l0.State, stretchedCube().State) {
		t.Error("ensemble modified the initial lattice")
	}
}

func TestSimulatorBackendIndependent(t *testing.T) {
	p := testParams(dynamo.RK4)
	a := stretchedCube()
	b := stretchedCube()

	New(p).Step(a, 10)
	s := New(p)
	s.SetBackend(compute.NewCPUBackendWorkers(3))
	s.Step(b, 10)

	if !equalStates(a.State, b.State) {
		t.Error("cpu backend changed the trajectory")
	}
}
