package sim

import (
	"fmt"

	"github.com/san-kum/pocketphys/internal/physics"
)

// Frame is the state of every body at one instant, in world order.
type Frame struct {
	Time   float64
	Bodies []physics.BodyState
}

func (f Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// CollisionObserver is notified for every pair the driver resolves. i and j
// are indices into the world's body order.
type CollisionObserver interface {
	OnCollision(t float64, i, j int)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60.0,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	Collisions int
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
