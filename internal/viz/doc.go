// Package viz renders jello runs in the terminal.
//
// [Monitor] is a Bubble Tea model that advances a simulation while showing
// the step counter, the recorded metrics and an energy plot. The cube
// itself is not drawn.
//
// # Key Bindings
//
//	p - Pause/Resume
//	n - Advance one step while paused
//	q - Quit
//
// [Summary] formats a world's parameters for the info command.
package viz
