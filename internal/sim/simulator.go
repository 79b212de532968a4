package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/pocketphys/internal/physics"
)

// Simulator drives a World: it steps it, then tests and resolves the body
// pairs selected by its Pairing.
type Simulator struct {
	world              *physics.World
	pairing            Pairing
	metrics            []Metric
	observers          []Observer
	collisionObservers []CollisionObserver
	t                  float64
}

func New(world *physics.World, pairing Pairing) *Simulator {
	return &Simulator{
		world:     world,
		pairing:   pairing,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

// AddMetric registers m. Metrics that also implement CollisionObserver are
// notified of resolved collisions.
func (s *Simulator) AddMetric(m Metric) {
	s.metrics = append(s.metrics, m)
	if co, ok := m.(CollisionObserver); ok {
		s.collisionObservers = append(s.collisionObservers, co)
	}
}

func (s *Simulator) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
	if co, ok := o.(CollisionObserver); ok {
		s.collisionObservers = append(s.collisionObservers, co)
	}
}

func (s *Simulator) World() *physics.World { return s.world }
func (s *Simulator) Pairing() Pairing      { return s.pairing }
func (s *Simulator) Time() float64         { return s.t }

// Frame captures the current state of the world.
func (s *Simulator) Frame() Frame {
	return Frame{Time: s.t, Bodies: s.world.Snapshot()}
}

// Tick advances the world by dt and resolves contacts among the selected
// pairs. It returns the number of collisions resolved.
func (s *Simulator) Tick(dt float64) int {
	s.world.Step(dt)
	s.t += dt

	bodies := s.world.Bodies()
	collisions := 0
	s.pairing.pairs(len(bodies), func(i, j int) {
		a, b := bodies[i], bodies[j]
		if !s.world.CheckCollision(a, b) {
			return
		}
		s.world.ResolveCollision(a, b)
		collisions++
		for _, co := range s.collisionObservers {
			co.OnCollision(s.t, i, j)
		}
	})
	return collisions
}

// MaxSteps bounds the number of steps a single Run may take.
const MaxSteps = 10_000_000

// Run performs a fixed-step run of cfg.Duration seconds, recording a frame
// before the first step and after every step. Metrics are reset, but the
// world and the clock carry on from where the previous Run or Tick left
// them; build a new Simulator for an independent run.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Frames:  make([]Frame, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	f := s.Frame()
	s.observe(f)
	result.Frames = append(result.Frames, f)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		result.Collisions += s.Tick(cfg.Dt)

		f = s.Frame()
		if cfg.ValidateState && !f.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: f.Time, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		result.StepsTaken++
		result.Frames = append(result.Frames, f)
		s.observe(f)
	}

	s.collect(result)
	return result, nil
}

// RunRealtime steps the world with the wall-clock deltas measured by eng,
// once per frame interval, until onFrame returns false, eng is shut down or
// ctx is cancelled.
func (s *Simulator) RunRealtime(ctx context.Context, eng *Engine, frame time.Duration, onFrame func(*Simulator) bool) error {
	if frame <= 0 {
		return fmt.Errorf("frame interval must be positive, got %v", frame)
	}

	eng.Initialize()
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for eng.Running() {
		if dt := eng.Update(); !eng.Paused() {
			s.Tick(dt)
			s.observe(s.Frame())
		}

		if onFrame != nil && !onFrame(s) {
			eng.Shutdown()
			break
		}

		select {
		case <-ctx.Done():
			eng.Shutdown()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (s *Simulator) observe(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnStep(f)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if steps := math.Round(cfg.Duration / cfg.Dt); steps > MaxSteps {
		return fmt.Errorf("%.0f steps exceeds the limit of %d; raise dt or shorten the run", steps, MaxSteps)
	}
	return nil
}
