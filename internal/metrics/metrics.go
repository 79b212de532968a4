// Package metrics provides sim.Metric implementations over recorded frames.
package metrics

import (
	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
)

// Default returns the metrics recorded for every stored run.
func Default(gravity physics.Vector) []sim.Metric {
	return []sim.Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewMomentum(),
		NewMaxHeight(),
		NewCollisions(),
	}
}
