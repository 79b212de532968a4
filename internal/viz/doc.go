// Package viz draws worlds in the terminal.
//
// A [Renderer] projects body snapshots through a 2D camera onto a braille
// [Canvas]; each body is a filled disc of radius [BodyRadius] in its own
// [Color], and the ground is the line y = 0. [Live] wraps a renderer and a
// simulator in a Bubble Tea program:
//
//	Space  - Pause/Resume
//	R      - Reset to the scene's initial state
//	+/-    - Zoom
//	Arrows - Pan
//	F      - Fit camera to the bodies
//	Q      - Quit
//
// [PlotSeries] renders recorded runs as ASCII line charts.
package viz
