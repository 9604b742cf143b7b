package dynamo

import "math"

// Offset is a neighbour displacement in grid indices.
type Offset [3]int

// SpringGroup is a set of neighbour offsets sharing one rest length,
// expressed as a multiple of the lattice spacing.
type SpringGroup struct {
	Offsets    []Offset
	RestFactor float64
}

// RestLength is the group's rest length on a lattice of side n.
func (g SpringGroup) RestLength(n int) float64 {
	return g.RestFactor / float64(n-1)
}

// Family is one class of springs connecting a point to its neighbours.
type Family struct {
	Name   string
	Groups []SpringGroup
}

var Structural = Family{
	Name: "structural",
	Groups: []SpringGroup{{
		RestFactor: 1,
		Offsets: []Offset{
			{1, 0, 0}, {-1, 0, 0},
			{0, 1, 0}, {0, -1, 0},
			{0, 0, 1}, {0, 0, -1},
		},
	}},
}

var Shear = Family{
	Name: "shear",
	Groups: []SpringGroup{
		{
			RestFactor: math.Sqrt(2),
			Offsets: []Offset{
				// xy
				{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0},
				// xz
				{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
				// yz
				{0, 1, 1}, {0, 1, -1}, {0, -1, 1}, {0, -1, -1},
			},
		},
		{
			RestFactor: math.Sqrt(3),
			Offsets: []Offset{
				{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
				{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
			},
		},
	},
}

var Bend = Family{
	Name: "bend",
	Groups: []SpringGroup{{
		RestFactor: 2,
		Offsets: []Offset{
			{2, 0, 0}, {-2, 0, 0},
			{0, 2, 0}, {0, -2, 0},
			{0, 0, 2}, {0, 0, -2},
		},
	}},
}

// Families lists the spring families in the order their forces are summed.
var Families = []Family{Structural, Shear, Bend}

// Link is one spring between two lattice points, each counted once.
type Link struct {
	A, B int
	Rest float64
}

// Links enumerates every spring of f in l exactly once, keeping only the
// direction whose first non-zero offset component is positive.
func (f Family) Links(l *Lattice) []Link {
	var links []Link
	for _, g := range f.Groups {
		rest := g.RestLength(l.N)
		for _, off := range g.Offsets {
			if !off.forward() {
				continue
			}
			for i := 0; i < l.N; i++ {
				for j := 0; j < l.N; j++ {
					for k := 0; k < l.N; k++ {
						ni, nj, nk := i+off[0], j+off[1], k+off[2]
						if !l.InBounds(ni, nj, nk) {
							continue
						}
						links = append(links, Link{A: l.Index(i, j, k), B: l.Index(ni, nj, nk), Rest: rest})
					}
				}
			}
		}
	}
	return links
}

func (o Offset) forward() bool {
	for _, c := range o {
		if c != 0 {
			return c > 0
		}
	}
	return false
}
