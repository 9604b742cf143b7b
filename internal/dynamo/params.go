package dynamo

import (
	"fmt"
	"strings"
)

// MaxResolution bounds the force field side so Resolution³ samples fit in
// memory and never overflow int.
const MaxResolution = 512

type IntegratorKind int

const (
	Euler IntegratorKind = iota
	RK4
)

func (k IntegratorKind) String() string {
	switch k {
	case Euler:
		return "Euler"
	case RK4:
		return "RK4"
	default:
		return fmt.Sprintf("IntegratorKind(%d)", int(k))
	}
}

// ParseIntegrator accepts the spellings found in world files and on the
// command line ("Euler", "EULER", "rk4", ...).
func ParseIntegrator(name string) (IntegratorKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler":
		return Euler, nil
	case "rk4":
		return RK4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
}

func (k IntegratorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *IntegratorKind) UnmarshalText(b []byte) error {
	v, err := ParseIntegrator(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Plane is the inclined plane a*x + b*y + c*z + d = 0. It is carried
// through world files but no force model reads it.
type Plane struct {
	A, B, C, D float64
}

// Params holds the simulation parameters of one run. They do not change
// once the run has started.
type Params struct {
	Integrator IntegratorKind
	Dt         float64
	// Substeps is the number of timesteps between displayed frames.
	Substeps int

	KElastic   float64
	DElastic   float64
	KCollision float64
	DCollision float64
	Mass       float64

	Plane *Plane

	// Resolution is the number of force field samples per axis; 0 means
	// there is no field. Field holds Resolution³ samples.
	Resolution int
	Field      []Vec
}

// Validate rejects parameters a loader must not hand to the kernel.
func (p *Params) Validate() error {
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, p.Dt)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrParameterBounds, p.Mass)
	}
	if p.Resolution < 0 || p.Resolution > MaxResolution {
		return fmt.Errorf("%w: resolution must be in [0, %d], got %d", ErrParameterBounds, MaxResolution, p.Resolution)
	}
	if want := p.Resolution * p.Resolution * p.Resolution; len(p.Field) != want {
		return fmt.Errorf("%w: force field has %d samples, resolution %d needs %d",
			ErrDimensionMismatch, len(p.Field), p.Resolution, want)
	}
	if p.Integrator != Euler && p.Integrator != RK4 {
		return fmt.Errorf("%w: %v", ErrUnknownIntegrator, p.Integrator)
	}
	return nil
}

func (p *Params) Clone() *Params {
	c := *p
	if p.Plane != nil {
		pl := *p.Plane
		c.Plane = &pl
	}
	if p.Field != nil {
		c.Field = append([]Vec(nil), p.Field...)
	}
	return &c
}
