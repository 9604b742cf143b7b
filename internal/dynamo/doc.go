// Package dynamo provides the core types of the jello cube simulation.
//
//   - [Lattice]: N×N×N point masses in flat position/velocity buffers
//   - [Params]: integrator choice, timestep, spring/collision coefficients,
//     point mass and the optional force field
//   - [Family]: neighbour offset tables for structural, shear and bend springs
//   - [System] and [Integrator]: the acceleration model and the stepper
//
// # Example
//
//	l := dynamo.NewLattice(8)
//	cube := physics.NewJello(8, params)
//	integrators.NewRK4().Step(cube, &l.State, params.Dt)
//
// # Thread Safety
//
// None of the types are safe for concurrent use. A lattice is owned by the
// goroutine that steps it.
package dynamo
