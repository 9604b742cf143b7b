package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
)

func KineticEnergy(s dynamo.State, mass float64) float64 {
	e := 0.0
	for _, v := range s.Vel {
		e += 0.5 * mass * r3.Norm2(v)
	}
	return e
}

// ElasticEnergy is the potential stored in every spring of the lattice,
// each spring counted once.
func ElasticEnergy(l *dynamo.Lattice, k float64) float64 {
	e := 0.0
	for _, f := range dynamo.Families {
		for _, link := range f.Links(l) {
			e += SpringEnergy(l.Pos[link.A], l.Pos[link.B], link.Rest, k)
		}
	}
	return e
}

// TotalEnergy is kinetic plus elastic energy. Collision penalties and the
// force field are not included.
func TotalEnergy(l *dynamo.Lattice, p *dynamo.Params) float64 {
	return KineticEnergy(l.State, p.Mass) + ElasticEnergy(l, p.KElastic)
}
