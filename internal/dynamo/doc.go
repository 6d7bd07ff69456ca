// Package dynamo provides the shared primitives of the gravity simulation.
//
// The package defines the value types and constants every other package
// builds on:
//
//   - [Vector] and [Point]: copied coordinate tuples backed by gonum's r3
//   - [Params]: gravitational constant, tick delta, radius formula and
//     dimensionality as named configuration
//   - [ParallelFor]: chunked fan-out used by the per-body force phase
//
// # Dimensionality
//
// Both the 2D and 3D regimes run on the same 3-component vector. In 2D the
// Z axis is zero at construction and stays zero, because every force is a
// combination of in-plane displacements:
//
//	p := dynamo.DefaultParams()
//	p.Dimensions = 2
//	pos := dynamo.Vec3(x, y, z).Project(p.Dimensions)
package dynamo
