package metrics

import "github.com/san-kum/pocketphys/internal/sim"

// Collisions counts resolved contacts. It implements sim.CollisionObserver,
// so registering it with AddMetric is enough.
type Collisions struct {
	count int
	last  float64
}

func NewCollisions() *Collisions { return &Collisions{} }

func (c *Collisions) Name() string      { return "collisions" }
func (c *Collisions) Observe(sim.Frame) {}
func (c *Collisions) Value() float64    { return float64(c.count) }

// LastCollision is the simulation time of the most recent contact.
func (c *Collisions) LastCollision() float64 {
	return c.last
}

func (c *Collisions) OnCollision(t float64, _, _ int) {
	c.count++
	c.last = t
}

func (c *Collisions) Reset() {
	c.count = 0
	c.last = 0
}
