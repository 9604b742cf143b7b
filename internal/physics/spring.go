package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// MinSpringLength is the length below which two spring endpoints are
// treated as coincident and contribute no force.
const MinSpringLength = 1e-8

// SpringForce adds to force the Hookean plus damping force that a spring of
// the given rest length exerts on endpoint 1. The force on endpoint 2 is the
// same call with the endpoints swapped.
func SpringForce(p1, p2, v1, v2 dynamo.Vec, rest, k, d float64, force *dynamo.Vec) {
	l := r3.Sub(p1, p2)
	length := math.Sqrt(r3.Norm2(l))
	if length < MinSpringLength {
		return
	}
	unit := r3.Scale(1.0/length, l)

	elastic := r3.Scale(-k*(length-rest), unit)
	damping := r3.Scale(-d*r3.Dot(r3.Sub(v1, v2), unit), unit)

	*force = r3.Add(*force, elastic)
	*force = r3.Add(*force, damping)
}

// SpringEnergy is the elastic potential stored in a spring of the given
// rest length.
func SpringEnergy(p1, p2 dynamo.Vec, rest, k float64) float64 {
	stretch := math.Sqrt(r3.Norm2(r3.Sub(p1, p2))) - rest
	return 0.5 * k * stretch * stretch
}
