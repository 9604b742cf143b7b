package metrics

import (
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
)

// Extent reports the largest absolute position component of the latest
// observation.
type Extent struct {
	name string
	last float64
}

func NewExtent() *Extent {
	return &Extent{name: "extent"}
}

func (e *Extent) Name() string                          { return e.name }
func (e *Extent) Observe(l *dynamo.Lattice, t float64) { e.last = l.MaxAbs() }
func (e *Extent) Value() float64                        { return e.last }
func (e *Extent) Reset()                                { e.last = 0 }

// Containment is the fraction of observations in which every point was
// inside the collision box.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(l *dynamo.Lattice, t float64) {
	c.samples++
	for _, p := range l.Pos {
		if !physics.Inside(p) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// Default returns the metrics recorded for every run.
func Default(params *dynamo.Params) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(params),
		NewKinetic(params.Mass),
		NewEnergyDrift(params),
		NewExtent(),
		NewContainment(),
	}
}
