// Package viz renders a running gas simulation in the terminal.
//
// The live view is a Bubble Tea program drawing particles on a braille
// [Canvas] next to a stats panel with an asciigraph energy chart. The
// simulation itself ticks on a [sim.Controller]; the view only samples
// snapshots and forwards key presses to it.
//
// # Key Bindings
//
//	Space          - Pause/Resume
//	R              - Re-scatter particles
//	+ / -          - Population ±10
//	Left/Right     - Narrow/widen the container
//	Shift+Up/Down  - Shorten/heighten the container
//	M              - Toggle ideal / van der Waals
//	Tab, Up, Down  - Select and tune a gas-state field
//	T              - Cycle color themes
//	G              - Toggle GIF recording
//	?              - Show help overlay
package viz
