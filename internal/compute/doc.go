// Package compute provides backends for evaluating lattice accelerations.
//
//   - [Serial]: evaluates every point on the calling goroutine
//   - [CPUBackend]: spreads slabs of the lattice over worker goroutines
//
// Both produce identical results, so the choice only affects speed:
//
//	sys := compute.System(compute.NewCPUBackend(), physics.NewJello(n, params))
//	integrator.Step(sys, &lattice.State, params.Dt)
package compute
