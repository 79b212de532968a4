package metrics

import (
	"math"

	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
)

// TotalEnergy returns kinetic plus gravitational potential energy, with zero
// potential at the origin.
func TotalEnergy(bodies []physics.BodyState, gravity physics.Vector) float64 {
	total := 0.0
	for _, b := range bodies {
		ke := 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
		pe := -b.Mass * gravity.Dot(b.Position)
		total += ke + pe
	}
	return total
}

// Energy is the mean total energy over all observed frames.
type Energy struct {
	name        string
	gravity     physics.Vector
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity physics.Vector) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	e.totalEnergy += TotalEnergy(f.Bodies, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// energy. Inelastic bounces make it grow; it is zero for a closed elastic
// system integrated exactly.
type EnergyDrift struct {
	name          string
	gravity       physics.Vector
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity physics.Vector) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	energy := TotalEnergy(f.Bodies, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
