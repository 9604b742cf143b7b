package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
	"github.com/san-kum/jellosim/internal/worldfile"
)

const (
	DefaultSteps   = 2000
	DefaultBound   = 100.0
	DefaultDataDir = ".jellosim"
	DefaultPreset  = "rest"
	DefaultSide    = 8
)

// Config describes one run. World and Preset select the initial world;
// Physics entries override the world's parameters when set.
type Config struct {
	World      string        `yaml:"world,omitempty"`
	Preset     string        `yaml:"preset,omitempty"`
	Side       int           `yaml:"side,omitempty"`
	Integrator string        `yaml:"integrator,omitempty"`
	Steps      int           `yaml:"steps"`
	Every      int           `yaml:"every,omitempty"`
	Bound      float64       `yaml:"bound"`
	DataDir    string        `yaml:"data_dir"`
	Physics    PhysicsConfig `yaml:"physics,omitempty"`
}

type PhysicsConfig struct {
	Dt         *float64 `yaml:"dt,omitempty"`
	KElastic   *float64 `yaml:"k_elastic,omitempty"`
	DElastic   *float64 `yaml:"d_elastic,omitempty"`
	KCollision *float64 `yaml:"k_collision,omitempty"`
	DCollision *float64 `yaml:"d_collision,omitempty"`
	Mass       *float64 `yaml:"mass,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:  DefaultPreset,
		Side:    DefaultSide,
		Steps:   DefaultSteps,
		Bound:   DefaultBound,
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Apply writes the configured overrides into p and validates the result.
func (c *Config) Apply(p *dynamo.Params) error {
	if c.Integrator != "" {
		kind, err := dynamo.ParseIntegrator(c.Integrator)
		if err != nil {
			return err
		}
		p.Integrator = kind
	}

	overrides := []struct {
		src *float64
		dst *float64
	}{
		{c.Physics.Dt, &p.Dt},
		{c.Physics.KElastic, &p.KElastic},
		{c.Physics.DElastic, &p.DElastic},
		{c.Physics.KCollision, &p.KCollision},
		{c.Physics.DCollision, &p.DCollision},
		{c.Physics.Mass, &p.Mass},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	return p.Validate()
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Steps: c.Steps, Every: c.Every, Bound: c.Bound}
}

func (c *Config) Validate() error {
	if c.World == "" && c.Preset == "" {
		return fmt.Errorf("%w: either world or preset must be set", dynamo.ErrParameterBounds)
	}
	if c.World == "" && c.Side < 2 {
		return fmt.Errorf("%w: side must be at least 2, got %d", dynamo.ErrParameterBounds, c.Side)
	}
	return c.SimConfig().Validate()
}

// LoadWorld builds the starting world: the world file when one is set,
// otherwise the preset. Overrides are applied before it is returned along
// with a short name for run ids and titles.
func (c *Config) LoadWorld() (string, *worldfile.World, error) {
	var (
		name string
		w    *worldfile.World
	)
	if c.World != "" {
		loaded, err := worldfile.Load(c.World)
		if err != nil {
			return "", nil, err
		}
		name = strings.TrimSuffix(filepath.Base(c.World), filepath.Ext(c.World))
		w = loaded
	} else {
		built, err := BuildPreset(c.Preset, c.Side)
		if err != nil {
			return "", nil, err
		}
		name = c.Preset
		w = built
	}

	if err := c.Apply(w.Params); err != nil {
		return "", nil, err
	}
	return name, w, nil
}
