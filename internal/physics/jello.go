package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// Jello is the acceleration model of an N×N×N jello cube: structural, shear
// and bend springs, the optional external force field and the penalty
// walls of the collision box.
type Jello struct {
	n      int
	params *dynamo.Params
	field  *FieldGrid
}

// NewJello builds the model for a lattice of side n. params is read on
// every evaluation and must not be modified while the model is in use.
func NewJello(n int, params *dynamo.Params) *Jello {
	c := &Jello{n: n, params: params}
	if params.Resolution > 0 {
		c.field = NewFieldGrid(params.Resolution, params.Field)
	}
	return c
}

func (c *Jello) N() int { return c.n }

// Accelerations implements dynamo.System. s must hold N³ points in lattice
// order and out must have the same length.
func (c *Jello) Accelerations(s dynamo.State, out []dynamo.Vec) {
	for idx := range out {
		out[idx] = dynamo.Vec{}
	}

	n := c.n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				out[(i*n+j)*n+k] = c.Acceleration(s, i, j, k)
			}
		}
	}
}

// Acceleration returns the acceleration of point (i,j,k). It only reads s,
// so points may be evaluated concurrently.
func (c *Jello) Acceleration(s dynamo.State, i, j, k int) dynamo.Vec {
	return r3.Scale(1.0/c.params.Mass, c.Force(s, i, j, k))
}

// Force returns the total force on point (i,j,k). Contributions are summed
// in a fixed order: structural, shear, bend, field, collision.
func (c *Jello) Force(s dynamo.State, i, j, k int) dynamo.Vec {
	idx := (i*c.n+j)*c.n + k
	var force dynamo.Vec

	c.addStructuralForces(s, i, j, k, &force)
	c.addShearForces(s, i, j, k, &force)
	c.addBendForces(s, i, j, k, &force)

	if c.params.Resolution != 0 && c.field != nil {
		if f, ok := c.field.Sample(s.Pos[idx]); ok {
			force = r3.Add(force, f)
		}
	}

	CollisionForce(s.Pos[idx], s.Vel[idx], c.params.KCollision, c.params.DCollision, &force)
	return force
}
