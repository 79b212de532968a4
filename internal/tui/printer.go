// Package tui prints frames straight to a terminal without taking it over,
// for headless real-time runs.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pocketphys/internal/sim"
	"github.com/san-kum/pocketphys/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Printer is a sim.Observer that redraws the world on every frame it sees.
type Printer struct {
	out      io.Writer
	title    string
	renderer *viz.Renderer
	ansi     bool
	frames   int
}

// NewPrinter writes to out. With ansi false the screen is never cleared and
// frames are simply appended, which is what pipes and tests want.
func NewPrinter(out io.Writer, title string, renderer *viz.Renderer, ansi bool) *Printer {
	return &Printer{
		out:      out,
		title:    title,
		renderer: renderer,
		ansi:     ansi,
	}
}

func (p *Printer) Frames() int { return p.frames }

func (p *Printer) OnStep(f sim.Frame) {
	p.frames++

	var b strings.Builder
	if p.ansi {
		b.WriteString(clearScreen)
	}
	c := p.renderer.Draw(f.Bodies)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", p.title, f.Time))
	b.WriteString("  " + strings.Repeat("-", c.Width) + "\n")
	for _, line := range strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", c.Width) + "\n")

	for i, s := range f.Bodies {
		if i >= 4 {
			b.WriteString(fmt.Sprintf("  ... %d more\n", len(f.Bodies)-i))
			break
		}
		b.WriteString(fmt.Sprintf("  [%d] x=%.2f y=%.2f vx=%.2f vy=%.2f\n",
			i, s.Position.X, s.Position.Y, s.Velocity.X, s.Velocity.Y))
	}

	fmt.Fprint(p.out, b.String())
}

func (p *Printer) Start() {
	if p.ansi {
		fmt.Fprint(p.out, hideCursor)
	}
}

func (p *Printer) Stop() {
	if p.ansi {
		fmt.Fprint(p.out, showCursor)
	}
}
