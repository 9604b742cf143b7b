package physics

import (
	"math"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// BoxHalfWidth is the half extent of the axis-aligned collision box
// [-2,2]³ centred at the origin.
const BoxHalfWidth = 2.0

// CollisionForce adds the penalty force of the six walls of the collision
// box to force. Each wall acts independently, so a point past a corner is
// pushed by every wall it has crossed.
func CollisionForce(p, v dynamo.Vec, kc, dc float64, force *dynamo.Vec) {
	wallForce(p.X, v.X, kc, dc, &force.X)
	wallForce(p.Y, v.Y, kc, dc, &force.Y)
	wallForce(p.Z, v.Z, kc, dc, &force.Z)
}

// wallForce adds the penalty along one axis from the low and high walls.
func wallForce(p, v, kc, dc float64, f *float64) {
	lo, hi := -BoxHalfWidth, BoxHalfWidth
	if p < lo {
		*f += kc * (lo - p)
		if v < 0 {
			*f += dc * math.Abs(v)
		}
	}
	if p > hi {
		*f -= kc * (p - hi)
		if v > 0 {
			*f -= dc * math.Abs(v)
		}
	}
}

// Inside reports whether p lies within the collision box.
func Inside(p dynamo.Vec) bool {
	return math.Abs(p.X) <= BoxHalfWidth && math.Abs(p.Y) <= BoxHalfWidth && math.Abs(p.Z) <= BoxHalfWidth
}
