// Package physics implements the force models of the jello cube.
//
//   - [SpringForce]: Hookean spring with damping along the spring axis
//   - [FieldGrid]: trilinear sampling of an external force field
//   - [CollisionForce]: penalty walls of the [-2,2]³ bounding box
//   - [Jello]: sums all of the above per lattice point and divides by mass
//
// Spring rest lengths are fractions of 1/(N-1) while the collision box and
// the force field read positions as world coordinates directly. World
// files are authored against this unit mix.
//
// No function in this package returns an error. Degenerate inputs (coincident
// spring endpoints, field queries outside the grid) contribute zero force.
package physics
