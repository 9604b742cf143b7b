package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/jellosim/internal/config"
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/metrics"
	"github.com/san-kum/jellosim/internal/sim"
	"github.com/san-kum/jellosim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Runs        []config.Config `yaml:"runs"`
}

// LoadScenario loads a scenario from a YAML file. Every run starts from
// the default config, so runs only need the fields they change.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Runs        []yaml.Node `yaml:"runs"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	scenario := &Scenario{Name: raw.Name, Description: raw.Description}
	for i, node := range raw.Runs {
		cfg := config.DefaultConfig()
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		scenario.Runs = append(scenario.Runs, *cfg)
	}

	return scenario, nil
}

// RunScenario executes every run in order and returns them ready to be
// stored. A run that stops early does not abort the scenario.
func RunScenario(ctx context.Context, scenario *Scenario) ([]storage.Run, error) {
	runs := make([]storage.Run, 0, len(scenario.Runs))

	for i := range scenario.Runs {
		cfg := &scenario.Runs[i]
		if err := cfg.Validate(); err != nil {
			return runs, fmt.Errorf("run %d: %w", i+1, err)
		}

		name, w, err := cfg.LoadWorld()
		if err != nil {
			return runs, fmt.Errorf("run %d: %w", i+1, err)
		}

		initial := w.Lattice.Clone()
		s := sim.New(w.Params)
		for _, m := range metrics.Default(w.Params) {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, w.Lattice, cfg.SimConfig())
		if err != nil {
			return runs, fmt.Errorf("run %d: %w", i+1, err)
		}

		final := w.Lattice
		w.Lattice = initial
		runs = append(runs, storage.Run{
			World:   name,
			Config:  cfg.SimConfig(),
			Initial: w,
			Final:   final,
			Result:  result,
		})
	}

	return runs, nil
}

// SweepParams lists the parameter names SetParam accepts.
var SweepParams = []string{"dt", "k_elastic", "d_elastic", "k_collision", "d_collision", "mass"}

// SetParam sets one named physical parameter.
func SetParam(p *dynamo.Params, name string, v float64) error {
	switch name {
	case "dt":
		p.Dt = v
	case "k_elastic":
		p.KElastic = v
	case "d_elastic":
		p.DElastic = v
	case "k_collision":
		p.KCollision = v
	case "d_collision":
		p.DCollision = v
	case "mass":
		p.Mass = v
	default:
		return fmt.Errorf("%w: unknown parameter %q (available: %v)", dynamo.ErrParameterBounds, name, SweepParams)
	}
	return nil
}

// ParameterSweep runs the same world across evenly spaced values of one
// parameter.
type ParameterSweep struct {
	Param string
	Min   float64
	Max   float64
	Count int
}

func (s ParameterSweep) Values() []float64 {
	if s.Count <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Count-1)
	values := make([]float64, s.Count)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// SweepResult summarises one member of a sweep.
type SweepResult struct {
	Value       float64
	StepsTaken  int
	Stable      bool
	MinEnergy   float64
	MaxEnergy   float64
	EnergyDrift float64
	Extent      float64
}

// RunSweep runs every sweep value concurrently from the same initial
// lattice.
func RunSweep(ctx context.Context, params *dynamo.Params, l0 *dynamo.Lattice, cfg sim.Config, sweep ParameterSweep) ([]SweepResult, error) {
	values := sweep.Values()
	members := make([]*dynamo.Params, len(values))
	for i, v := range values {
		p := params.Clone()
		if err := SetParam(p, sweep.Param, v); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		members[i] = p
	}

	e := sim.NewEnsemble(func(p *dynamo.Params) []dynamo.Metric {
		return []dynamo.Metric{metrics.NewEnergy(p), metrics.NewEnergyDrift(p), metrics.NewExtent()}
	}, members...)
	results, err := e.Run(ctx, l0, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, r := range results {
		minE, maxE := energyRange(r)
		out[i] = SweepResult{
			Value:       values[i],
			StepsTaken:  r.StepsTaken,
			Stable:      !r.Stopped(),
			MinEnergy:   minE,
			MaxEnergy:   maxE,
			EnergyDrift: r.Metrics["energy_drift"],
			Extent:      r.Metrics["extent"],
		}
	}
	return out, nil
}

func energyRange(r *sim.Result) (minE, maxE float64) {
	col := -1
	for i, name := range r.Columns {
		if name == "energy" {
			col = i
		}
	}
	if col < 0 || len(r.Frames) == 0 {
		return 0, 0
	}

	minE, maxE = math.Inf(1), math.Inf(-1)
	for _, f := range r.Frames {
		minE = math.Min(minE, f.Values[col])
		maxE = math.Max(maxE, f.Values[col])
	}
	return minE, maxE
}

// MonteCarloConfig perturbs every position component of the initial
// lattice by a uniform offset in [-Perturbation, Perturbation].
type MonteCarloConfig struct {
	Perturbation float64
	Trials       int
	Seed         int64
}

type MonteCarloResult struct {
	Trial      int
	StepsTaken int
	Stable     bool
	Extent     float64
}

// RunMonteCarlo runs the perturbed trials one after another. A zero seed
// uses the current time.
func RunMonteCarlo(ctx context.Context, params *dynamo.Params, l0 *dynamo.Lattice, cfg sim.Config, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, mc.Trials)

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < mc.Trials; trial++ {
		l := l0.Clone()
		for i := range l.Pos {
			l.Pos[i].X += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			l.Pos[i].Y += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			l.Pos[i].Z += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}

		s := sim.New(params)
		s.AddMetric(metrics.NewExtent())
		result, err := s.Run(ctx, l, cfg)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			Trial:      trial,
			StepsTaken: result.StepsTaken,
			Stable:     !result.Stopped(),
			Extent:     result.Metrics["extent"],
		})
	}

	return results, nil
}

// MonteCarloStats counts the stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
