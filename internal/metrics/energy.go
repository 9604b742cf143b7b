package metrics

import (
	"math"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
)

// Energy reports the latest kinetic plus elastic energy of the cube.
type Energy struct {
	name   string
	params *dynamo.Params
	last   float64
}

func NewEnergy(params *dynamo.Params) *Energy {
	return &Energy{name: "energy", params: params}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(l *dynamo.Lattice, t float64) {
	e.last = physics.TotalEnergy(l, e.params)
}

func (e *Energy) Value() float64 { return e.last }
func (e *Energy) Reset()         { e.last = 0 }

// Kinetic reports the latest kinetic energy of the cube.
type Kinetic struct {
	name string
	mass float64
	last float64
}

func NewKinetic(mass float64) *Kinetic {
	return &Kinetic{name: "kinetic", mass: mass}
}

func (k *Kinetic) Name() string { return k.name }

func (k *Kinetic) Observe(l *dynamo.Lattice, t float64) {
	k.last = physics.KineticEnergy(l.State, k.mass)
}

func (k *Kinetic) Value() float64 { return k.last }
func (k *Kinetic) Reset()         { k.last = 0 }

// EnergyDrift is the largest relative deviation of total energy from the
// first observation.
type EnergyDrift struct {
	name          string
	params        *dynamo.Params
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(params *dynamo.Params) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", params: params}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(l *dynamo.Lattice, t float64) {
	energy := physics.TotalEnergy(l, e.params)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
