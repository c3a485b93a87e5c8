// Package viz renders physics worlds in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: steps a physics manager and draws every object's collision
//     bounds as a wireframe
//   - [Canvas]: Braille-based pixel canvas
//   - [RenderSummary]: a styled report of a finished run
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset world time and wake every object
//	T     - Cycle color themes
//	X/Y   - Orbit the camera
//	+/-   - Zoom
//	?     - Show help overlay
package viz
