// Package viz renders a running coil simulation in the terminal.
//
// [Model] is a Bubble Tea program that advances the simulator a number of
// steps per frame and draws the coil and projectile on a braille [Canvas],
// next to a stats panel and a velocity history graph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the entry face
//	N     - Single step
//	+/-   - Change steps per frame
//	T     - Cycle color themes
//	?     - Show help
package viz
