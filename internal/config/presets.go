package config

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/worldfile"
)

// Preset builds a complete world for a lattice of side n.
type Preset struct {
	Description string
	Build       func(n int) *worldfile.World
}

var Presets = map[string]Preset{
	"rest": {
		Description: "cube at rest length spacing, no field",
		Build: func(n int) *worldfile.World {
			return newWorld(n, func(l *dynamo.Lattice) {
				fillGrid(l, dynamo.Vec{}, 1)
			})
		},
	},
	"stretched": {
		Description: "cube stretched by half along every axis, released at rest",
		Build: func(n int) *worldfile.World {
			return newWorld(n, func(l *dynamo.Lattice) {
				fillGrid(l, dynamo.Vec{X: -0.75, Y: -0.75, Z: -0.75}, 1.5)
			})
		},
	},
	"drop": {
		Description: "centred cube under a uniform downward force field",
		Build: func(n int) *worldfile.World {
			w := newWorld(n, func(l *dynamo.Lattice) {
				fillGrid(l, dynamo.Vec{X: -0.5, Y: -0.5, Z: -0.5}, 1)
			})
			uniformField(w.Params, 4, dynamo.Vec{Z: -0.02})
			return w
		},
	},
	"spin": {
		Description: "centred cube spinning about the z axis",
		Build: func(n int) *worldfile.World {
			return newWorld(n, func(l *dynamo.Lattice) {
				fillGrid(l, dynamo.Vec{X: -0.5, Y: -0.5, Z: -0.5}, 1)
				omega := dynamo.Vec{Z: 5}
				for i, p := range l.Pos {
					l.Vel[i] = r3.Cross(omega, p)
				}
			})
		},
	},
	"wall": {
		Description: "cube moving into the x=-2 wall, already penetrating",
		Build: func(n int) *worldfile.World {
			return newWorld(n, func(l *dynamo.Lattice) {
				fillGrid(l, dynamo.Vec{X: -2.3, Y: -0.5, Z: -0.5}, 1)
				for i := range l.Vel {
					l.Vel[i] = dynamo.Vec{X: -1}
				}
			})
		},
	},
}

// BaseParams are the parameters shared by every preset.
func BaseParams() *dynamo.Params {
	return &dynamo.Params{
		Integrator: dynamo.RK4,
		Dt:         0.0005,
		Substeps:   1,
		KElastic:   100,
		DElastic:   0.1,
		KCollision: 400,
		DCollision: 0.25,
		Mass:       0.002,
		Field:      []dynamo.Vec{},
	}
}

// GetPreset builds the named preset world, or returns nil when no preset
// has that name.
func GetPreset(name string, n int) *worldfile.World {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Build(n)
}

// BuildPreset is GetPreset with errors for an unknown name or a lattice
// too small to have a spacing.
func BuildPreset(name string, n int) (*worldfile.World, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: side must be at least 2, got %d", dynamo.ErrParameterBounds, n)
	}
	w := GetPreset(name, n)
	if w == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
	}
	return w, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newWorld(n int, init func(l *dynamo.Lattice)) *worldfile.World {
	l := dynamo.NewLattice(n)
	init(l)
	return &worldfile.World{Params: BaseParams(), Lattice: l}
}

// fillGrid places point (i,j,k) at origin + scale*(i,j,k)/(N-1).
func fillGrid(l *dynamo.Lattice, origin dynamo.Vec, scale float64) {
	h := scale * l.Spacing()
	l.Fill(func(i, j, k int) dynamo.Vec {
		return r3.Add(origin, dynamo.Vec{X: float64(i) * h, Y: float64(j) * h, Z: float64(k) * h})
	})
}

func uniformField(p *dynamo.Params, r int, f dynamo.Vec) {
	p.Resolution = r
	p.Field = make([]dynamo.Vec, r*r*r)
	for i := range p.Field {
		p.Field[i] = f
	}
}
