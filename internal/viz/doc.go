// Package viz provides terminal views of running particle systems.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [LiveModel]: steps a system every tick and draws it on a braille canvas
//   - [Picker]: preset selection menu
//   - [Canvas]: braille dot grid used for drawing particles
//
// Systems with more than two dimensions are projected through a rotatable
// [Camera]; only the first three axes are shown.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset to initial state
//	T     - Cycle color themes
//	X/Y   - Rotate the camera
//	+/-   - Zoom
//	?     - Show help overlay
package viz
