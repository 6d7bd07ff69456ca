// Package gravity implements the discrete-time N-body core: point masses
// that attract, move and merge.
//
//   - [Body]: one point mass with a mass-derived radius
//   - [Scene]: the live body set and its per-tick update
//   - [Coalesce]: nearest-neighbor-sorted single-pass coalescing
//   - [Generator]: seeded scenario construction with an anchor body
//
// # Integration
//
// Each tick uses semi-implicit Euler. Every body first accumulates the pull
// of every other body against the previous tick's positions, then moves by
// its new velocity once. Velocities are per-tick displacements.
//
// # Collisions
//
// Collisions are resolved by sorting the updated bodies by the distance to
// their nearest neighbour and merging adjacent colliding pairs in a single
// pass. Collisions between bodies that do not end up adjacent are deferred
// to the next tick; the scene is not guaranteed collision-free after one
// Update.
//
// # Degenerate input
//
// Coincident bodies exert zero force on each other. Bodies built with
// [NewBody] are not validated; use [NewValidatedBody] or [FromBodies] at the
// boundary.
package gravity
