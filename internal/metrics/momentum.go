package metrics

import (
	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
)

func TotalMomentum(bodies []physics.BodyState) physics.Vector {
	var p physics.Vector
	for _, b := range bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

// Momentum reports the magnitude of the total linear momentum in the most
// recent frame.
type Momentum struct {
	name string
	last physics.Vector
}

func NewMomentum() *Momentum {
	return &Momentum{
		name: "momentum",
	}
}

func (m *Momentum) Name() string {
	return m.name
}

func (m *Momentum) Observe(f sim.Frame) {
	m.last = TotalMomentum(f.Bodies)
}

func (m *Momentum) Value() float64 {
	return m.last.Len()
}

func (m *Momentum) Reset() {
	m.last = physics.Vector{}
}
