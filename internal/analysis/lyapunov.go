package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent of a jello run
// by trajectory separation. A copy of l0 has one point displaced by
// perturbation along x and both copies are advanced for steps timesteps.
// Whenever the separation exceeds 1 its log growth is banked and the copy
// is pulled back to distance perturbation; the result is the total log
// growth over the elapsed time.
//
// Damped cubes give negative values, conservative ones tend to zero as
// steps grows, and a positive value means nearby starts diverge.
func LyapunovExponent(params *dynamo.Params, l0 *dynamo.Lattice, perturbation float64, steps int) float64 {
	if l0.Len() == 0 || perturbation <= 0 || steps <= 0 {
		return 0
	}

	x := l0.Clone()
	xp := l0.Clone()
	xp.Pos[0].X += perturbation
	d0 := perturbation

	a, b := sim.New(params), sim.New(params)

	growth := 0.0
	sep := d0
	taken := 0

	for taken < steps {
		a.Step(x, 1)
		b.Step(xp, 1)

		next := separation(x, xp)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		sep = next
		taken++

		if sep > 1.0 {
			growth += math.Log(sep / d0)
			scale := d0 / sep
			for i := range xp.Pos {
				xp.Pos[i] = r3.Add(x.Pos[i], r3.Scale(scale, r3.Sub(xp.Pos[i], x.Pos[i])))
				xp.Vel[i] = r3.Add(x.Vel[i], r3.Scale(scale, r3.Sub(xp.Vel[i], x.Vel[i])))
			}
			sep = d0
		}
	}

	if taken == 0 || sep == 0 {
		return 0
	}
	growth += math.Log(sep / d0)
	return growth / (float64(taken) * params.Dt)
}

// separation is the Euclidean distance between two lattices in phase space.
func separation(a, b *dynamo.Lattice) float64 {
	sep := 0.0
	for i := range a.Pos {
		sep += r3.Norm2(r3.Sub(b.Pos[i], a.Pos[i]))
		sep += r3.Norm2(r3.Sub(b.Vel[i], a.Vel[i]))
	}
	return math.Sqrt(sep)
}
