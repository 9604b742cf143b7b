package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/jellosim/internal/config"
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
)

func TestParameterSweepValues(t *testing.T) {
	tests := []struct {
		sweep ParameterSweep
		want  []float64
	}{
		{ParameterSweep{Min: 1, Max: 3, Count: 3}, []float64{1, 2, 3}},
		{ParameterSweep{Min: 5, Max: 9, Count: 1}, []float64{5}},
		{ParameterSweep{Min: 0, Max: 1, Count: 5}, []float64{0, 0.25, 0.5, 0.75, 1}},
	}

	for _, tt := range tests {
		got := tt.sweep.Values()
		if len(got) != len(tt.want) {
			t.Fatalf("expected %v, got %v", tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("value %d: expected %v, got %v", i, tt.want[i], got[i])
			}
		}
	}
}

func TestSetParam(t *testing.T) {
	p := config.BaseParams()
	for i, name := range SweepParams {
		if err := SetParam(p, name, float64(i+1)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if p.Dt != 1 || p.KElastic != 2 || p.Mass != 6 {
		t.Errorf("parameters not set: %+v", p)
	}

	if err := SetParam(p, "gravity", 1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	w := config.GetPreset("stretched", 4)
	sweep := ParameterSweep{Param: "d_elastic", Min: 0.05, Max: 0.2, Count: 3}

	results, err := RunSweep(context.Background(), w.Params, w.Lattice, sim.Config{Steps: 20, Every: 5}, sweep)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Value != sweep.Values()[i] {
			t.Errorf("result %d: value %v out of order", i, r.Value)
		}
		if !r.Stable || r.StepsTaken != 20 {
			t.Errorf("result %d: expected a stable 20 step run, got %+v", i, r)
		}
		if r.MinEnergy > r.MaxEnergy {
			t.Errorf("result %d: energy range inverted", i)
		}
	}

	if w.Params.DElastic != config.BaseParams().DElastic {
		t.Error("sweep modified the base parameters")
	}
}

func TestRunSweep_InvalidValue(t *testing.T) {
	w := config.GetPreset("rest", 3)
	sweep := ParameterSweep{Param: "mass", Min: -1, Max: 1, Count: 2}
	if _, err := RunSweep(context.Background(), w.Params, w.Lattice, sim.Config{Steps: 1}, sweep); err == nil {
		t.Error("expected error for negative mass")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	w := config.GetPreset("rest", 3)
	mc := MonteCarloConfig{Perturbation: 0.01, Trials: 4, Seed: 7}

	a, err := RunMonteCarlo(context.Background(), w.Params, w.Lattice, sim.Config{Steps: 10, Bound: 10}, mc)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	b, err := RunMonteCarlo(context.Background(), w.Params, w.Lattice, sim.Config{Steps: 10, Bound: 10}, mc)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}

	if len(a) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(a))
	}
	for i := range a {
		if a[i].Extent != b[i].Extent {
			t.Errorf("trial %d differs between runs with the same seed", i)
		}
	}

	stable, unstable := MonteCarloStats(a)
	if stable != 4 || unstable != 0 {
		t.Errorf("expected all trials stable, got %d/%d", stable, unstable)
	}
}

func TestScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := []byte(`name: smoke
description: two short runs
runs:
  - preset: rest
    side: 3
    steps: 5
  - preset: wall
    side: 3
    steps: 8
    integrator: euler
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(scenario.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(scenario.Runs))
	}
	if scenario.Runs[0].Bound != config.DefaultBound {
		t.Error("runs should start from the default config")
	}

	runs, err := RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].World != "wall" || runs[1].Result.StepsTaken != 8 {
		t.Errorf("unexpected second run: %s with %d steps", runs[1].World, runs[1].Result.StepsTaken)
	}
	if runs[1].Initial.Params.Integrator != dynamo.Euler {
		t.Error("integrator override was not applied")
	}
	if runs[1].Initial.Lattice.Pos[0] == runs[1].Final.Pos[0] {
		t.Error("initial snapshot should differ from the final lattice")
	}
}
