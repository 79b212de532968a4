// Package export renders recorded trajectories and canvases as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/viz"
)

// Palette colors trajectories that have no color of their own.
var Palette = []string{"#00ff88", "#ff4444", "#00ccff", "#ffaa00", "#cc66ff", "#ffffff"}

const background = "#0a0a0a"

// CanvasToSVG draws every set braille dot of the canvas as a circle, in the
// color of its cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := canvas.Colors[y/4][x/2]
			if fill == "" {
				fill = viz.White.Hex()
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws one path per body over a shared frame that always
// includes the ground line y = 0. colors may be shorter than paths.
func TrajectoriesToSVG(paths [][]physics.Vector, colors []string, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := 0.0, 0.0
	points := 0
	for _, path := range paths {
		for _, p := range path {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
			points++
		}
	}
	if points == 0 {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(p physics.Vector) (float64, float64) {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))

	_, gy := project(physics.Vector{})
	fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444466\" stroke-width=\"1\"/>\n", gy, width, gy)

	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		stroke := Palette[i%len(Palette)]
		if i < len(colors) && colors[i] != "" {
			stroke = colors[i]
		}

		sb.WriteString(`<path fill="none" stroke="` + stroke + `" stroke-width="1.5" d="`)
		for j, p := range path {
			x, y := project(p)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		x, y := project(path[len(path)-1])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, stroke)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteTrajectories is TrajectoriesToSVG writing to w.
func WriteTrajectories(w io.Writer, paths [][]physics.Vector, colors []string, width, height int) error {
	svg := TrajectoriesToSVG(paths, colors, width, height)
	if svg == "" {
		return fmt.Errorf("no points to draw")
	}
	_, err := io.WriteString(w, svg)
	return err
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
