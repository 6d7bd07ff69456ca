// Package viz renders gravity scenes in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas
//   - [Camera]: rotate/pan/zoom projection of world positions
//   - [Model]: Bubble Tea viewer that advances a scene on a fixed frame tick
//   - [CanvasToSVG]: static export of a rendered canvas
//
// The viewer only reads bodies; it never influences the physics. Bodies that
// are absorbed in a merge disappear from the next frame.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Single tick while paused
//	[ ]   - Halve/double ticks per frame
//	x y z - Rotate (shift reverses)
//	+ -   - Zoom
//	hjkl  - Pan
//	C/F   - Fit all bodies / follow the heaviest
//	?     - Help overlay
package viz
