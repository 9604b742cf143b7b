package physics

import (
	"math"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// FieldGrid is a regular R×R×R grid of force vectors covering world
// coordinates [0, R-1] on each axis. Sample (x,y,z) is stored at flat index
// x + y*R + z*R*R.
type FieldGrid struct {
	R       int
	Samples []dynamo.Vec
}

func NewFieldGrid(r int, samples []dynamo.Vec) *FieldGrid {
	return &FieldGrid{R: r, Samples: samples}
}

func (g *FieldGrid) at(x, y, z int) dynamo.Vec {
	return g.Samples[x+y*g.R+z*g.R*g.R]
}

// Sample returns the trilinearly interpolated field at p. Coordinates are
// clamped into the grid first. ok is false when the grid is empty or the
// clamped corners still fall outside it, in which case the caller adds
// nothing.
func (g *FieldGrid) Sample(p dynamo.Vec) (f dynamo.Vec, ok bool) {
	r := g.R
	if r <= 0 {
		return dynamo.Vec{}, false
	}
	hi := float64(r - 1)
	x := clamp(p.X, 0, hi)
	y := clamp(p.Y, 0, hi)
	z := clamp(p.Z, 0, hi)

	x0, y0, z0 := int(math.Floor(x)), int(math.Floor(y)), int(math.Floor(z))
	x1, y1, z1 := ceilIndex(x0, r), ceilIndex(y0, r), ceilIndex(z0, r)

	if x0 < 0 || x1 >= r || y0 < 0 || y1 >= r || z0 < 0 || z1 >= r {
		return dynamo.Vec{}, false
	}
	if len(g.Samples) < r*r*r {
		return dynamo.Vec{}, false
	}

	xd := x - float64(x0)
	yd := y - float64(y0)
	zd := z - float64(z0)

	// along x
	f00 := lerp(g.at(x0, y0, z0), g.at(x1, y0, z0), xd)
	f01 := lerp(g.at(x0, y0, z1), g.at(x1, y0, z1), xd)
	f10 := lerp(g.at(x0, y1, z0), g.at(x1, y1, z0), xd)
	f11 := lerp(g.at(x0, y1, z1), g.at(x1, y1, z1), xd)

	// along y
	f0 := lerp(f00, f10, yd)
	f1 := lerp(f01, f11, yd)

	// along z
	return lerp(f0, f1, zd), true
}

func ceilIndex(i0, r int) int {
	if i0 < r-1 {
		return i0 + 1
	}
	return i0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// lerp blends a and b as a*(1-t) + b*t, component by component.
func lerp(a, b dynamo.Vec, t float64) dynamo.Vec {
	return dynamo.Vec{
		X: a.X*(1-t) + b.X*t,
		Y: a.Y*(1-t) + b.Y*t,
		Z: a.Z*(1-t) + b.Z*t,
	}
}
