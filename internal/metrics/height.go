package metrics

import (
	"math"

	"github.com/san-kum/pocketphys/internal/sim"
)

// MaxHeight is the highest y reached by any body.
type MaxHeight struct {
	max     float64
	samples int
}

func NewMaxHeight() *MaxHeight { return &MaxHeight{} }

func (h *MaxHeight) Name() string { return "max_height" }

func (h *MaxHeight) Observe(f sim.Frame) {
	for _, b := range f.Bodies {
		if h.samples == 0 {
			h.max = b.Position.Y
		}
		h.max = math.Max(h.max, b.Position.Y)
		h.samples++
	}
}

func (h *MaxHeight) Value() float64 { return h.max }

func (h *MaxHeight) Reset() {
	h.max = 0
	h.samples = 0
}
