package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
	"github.com/san-kum/pocketphys/internal/viz"
)

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "drop", viz.NewRenderer(20, 5), false)
	p.Start()

	p.OnStep(sim.Frame{Time: 0.5, Bodies: []physics.BodyState{
		{Position: physics.Vec(1, 2), Velocity: physics.Vec(0, -3), Mass: 1},
	}})
	p.Stop()

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Error("plain printer emitted escape codes")
	}
	for _, want := range []string{"drop  t=0.50s", "[0] x=1.00 y=2.00 vx=0.00 vy=-3.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if p.Frames() != 1 {
		t.Errorf("frames = %d", p.Frames())
	}
}

func TestPrinterANSI(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "x", viz.NewRenderer(10, 3), true)
	p.Start()
	p.OnStep(sim.Frame{})
	p.Stop()

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor+clearScreen) {
		t.Errorf("missing hide/clear prefix: %q", out[:min(len(out), 20)])
	}
	if !strings.HasSuffix(out, showCursor) {
		t.Error("cursor not restored")
	}
}

func TestPrinterTruncatesBodies(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "many", viz.NewRenderer(10, 3), false)
	bodies := make([]physics.BodyState, 6)
	for i := range bodies {
		bodies[i] = physics.BodyState{Position: physics.Vec(float64(i), 0), Mass: 1}
	}
	p.OnStep(sim.Frame{Bodies: bodies})
	if !strings.Contains(buf.String(), "... 2 more") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestPrinterAsObserver(t *testing.T) {
	w := physics.NewDefaultWorld()
	w.AddBody(physics.MustBody(physics.Vec(0, 5), physics.Vector{}, 1))

	var buf bytes.Buffer
	p := NewPrinter(&buf, "obs", viz.NewRenderer(10, 3), false)
	s := sim.New(w, sim.PairNone)
	s.AddObserver(p)

	if _, err := s.Run(t.Context(), sim.Config{Dt: 0.1, Duration: 0.3}); err != nil {
		t.Fatal(err)
	}
	if p.Frames() != 4 {
		t.Errorf("frames = %d, want 4", p.Frames())
	}
}
