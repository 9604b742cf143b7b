package dynamo

import (
	"errors"
	"testing"
)

func validParams() *Params {
	return &Params{
		Integrator: RK4,
		Dt:         0.0005,
		Substeps:   1,
		KElastic:   100,
		DElastic:   0.1,
		KCollision: 400,
		DCollision: 0.25,
		Mass:       0.002,
	}
}

func TestParseIntegrator(t *testing.T) {
	tests := []struct {
		name string
		kind IntegratorKind
		err  error
	}{
		{"Euler", Euler, nil},
		{"EULER", Euler, nil},
		{"euler", Euler, nil},
		{" Euler\n", Euler, nil},
		{"RK4", RK4, nil},
		{"rk4", RK4, nil},
		{"Rk4", RK4, nil},
		{"Midpoint", 0, ErrUnknownIntegrator},
		{"", 0, ErrUnknownIntegrator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntegrator(tt.name)
			if !errors.Is(err, tt.err) {
				t.Fatalf("ParseIntegrator(%q) error = %v, want %v", tt.name, err, tt.err)
			}
			if err == nil && got != tt.kind {
				t.Errorf("ParseIntegrator(%q) = %v, want %v", tt.name, got, tt.kind)
			}
		})
	}
}

func TestIntegratorKind_Text(t *testing.T) {
	for _, kind := range []IntegratorKind{Euler, RK4} {
		b, err := kind.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back IntegratorKind
		if err := back.UnmarshalText(b); err != nil || back != kind {
			t.Errorf("%v: round trip gave %v, %v", kind, back, err)
		}
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		err    error
	}{
		{"valid", func(p *Params) {}, nil},
		{"zero dt", func(p *Params) { p.Dt = 0 }, ErrParameterBounds},
		{"negative mass", func(p *Params) { p.Mass = -1 }, ErrParameterBounds},
		{"negative resolution", func(p *Params) { p.Resolution = -1 }, ErrParameterBounds},
		{"huge resolution", func(p *Params) { p.Resolution = 2097152 }, ErrParameterBounds},
		{"short field", func(p *Params) {
			p.Resolution = 2
			p.Field = make([]Vec, 7)
		}, ErrDimensionMismatch},
		{"field without resolution", func(p *Params) { p.Field = make([]Vec, 1) }, ErrDimensionMismatch},
		{"full field", func(p *Params) {
			p.Resolution = 2
			p.Field = make([]Vec, 8)
		}, nil},
		{"unknown integrator", func(p *Params) { p.Integrator = IntegratorKind(7) }, ErrUnknownIntegrator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.modify(p)
			if err := p.Validate(); !errors.Is(err, tt.err) {
				t.Errorf("Validate() = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestParams_CloneIsDeep(t *testing.T) {
	p := validParams()
	p.Plane = &Plane{A: 1}
	p.Resolution = 2
	p.Field = make([]Vec, 8)

	c := p.Clone()
	c.Plane.A = 5
	c.Field[0].X = 3
	if p.Plane.A != 1 || p.Field[0].X != 0 {
		t.Error("clone shares plane or field with the original")
	}
}
