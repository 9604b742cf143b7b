package physics

import "github.com/san-kum/jellosim/internal/dynamo"

// addFamily accumulates the forces of every spring of f attached to point
// (i,j,k). Neighbours outside the lattice are skipped.
func (c *Jello) addFamily(f dynamo.Family, s dynamo.State, i, j, k int, force *dynamo.Vec) {
	n := c.n
	self := (i*n+j)*n + k
	for g := range f.Groups {
		group := &f.Groups[g]
		rest := group.RestLength(n)
		for _, off := range group.Offsets {
			ni, nj, nk := i+off[0], j+off[1], k+off[2]
			if ni < 0 || ni >= n || nj < 0 || nj >= n || nk < 0 || nk >= n {
				continue
			}
			other := (ni*n+nj)*n + nk
			SpringForce(s.Pos[self], s.Pos[other], s.Vel[self], s.Vel[other],
				rest, c.params.KElastic, c.params.DElastic, force)
		}
	}
}

func (c *Jello) addStructuralForces(s dynamo.State, i, j, k int, force *dynamo.Vec) {
	c.addFamily(dynamo.Structural, s, i, j, k, force)
}

func (c *Jello) addShearForces(s dynamo.State, i, j, k int, force *dynamo.Vec) {
	c.addFamily(dynamo.Shear, s, i, j, k, force)
}

func (c *Jello) addBendForces(s dynamo.State, i, j, k int, force *dynamo.Vec) {
	c.addFamily(dynamo.Bend, s, i, j, k, force)
}
