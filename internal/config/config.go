package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pocketphys/internal/physics"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultDuration = 10.0
	DefaultPairing  = "all"
	DefaultColor    = "#ffffff"
)

var ErrInvalidScene = errors.New("config: invalid scene")

// Scene describes a world and the run parameters used to drive it.
type Scene struct {
	Name     string       `yaml:"name"`
	Gravity  [2]float64   `yaml:"gravity"`
	Dt       float64      `yaml:"dt"`
	Duration float64      `yaml:"duration"`
	Pairing  string       `yaml:"pairing"`
	Bodies   []BodyConfig `yaml:"bodies"`
}

// BodyConfig is the initial state of one body. Friction and Restitution are
// pointers so that an explicit zero can be told apart from "use default".
type BodyConfig struct {
	Position    [2]float64 `yaml:"position"`
	Velocity    [2]float64 `yaml:"velocity"`
	Mass        float64    `yaml:"mass"`
	Friction    *float64   `yaml:"friction,omitempty"`
	Restitution *float64   `yaml:"restitution,omitempty"`
	Color       string     `yaml:"color,omitempty"`
}

func DefaultScene() *Scene {
	return &Scene{
		Name:     "default",
		Gravity:  [2]float64{physics.DefaultGravity.X, physics.DefaultGravity.Y},
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Pairing:  DefaultPairing,
	}
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScene()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scene) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks run parameters and every body. Body parameters are checked
// by building them, so the rules stay in one place.
func (s *Scene) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidScene, s.Dt)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidScene, s.Duration)
	}
	switch s.Pairing {
	case "", "all", "none":
	default:
		return fmt.Errorf("%w: unknown pairing %q", ErrInvalidScene, s.Pairing)
	}
	for i, bc := range s.Bodies {
		if _, err := bc.Build(); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	return nil
}

// Build creates a world populated with the scene's bodies, returned in the
// same order as they appear in the file.
func (s *Scene) Build() (*physics.World, []*physics.Body, error) {
	w := physics.NewWorld(physics.Vec(s.Gravity[0], s.Gravity[1]))
	bodies := make([]*physics.Body, 0, len(s.Bodies))
	for i, bc := range s.Bodies {
		b, err := bc.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("body %d: %w", i, err)
		}
		w.AddBody(b)
		bodies = append(bodies, b)
	}
	return w, bodies, nil
}

func (b BodyConfig) Build() (*physics.Body, error) {
	var opts []physics.BodyOption
	if b.Friction != nil {
		opts = append(opts, physics.WithFriction(*b.Friction))
	}
	if b.Restitution != nil {
		opts = append(opts, physics.WithRestitution(*b.Restitution))
	}
	return physics.NewBody(
		physics.Vec(b.Position[0], b.Position[1]),
		physics.Vec(b.Velocity[0], b.Velocity[1]),
		b.Mass,
		opts...,
	)
}

// Colors returns each body's color, falling back to DefaultColor.
func (s *Scene) Colors() []string {
	out := make([]string, len(s.Bodies))
	for i, b := range s.Bodies {
		out[i] = b.Color
		if out[i] == "" {
			out[i] = DefaultColor
		}
	}
	return out
}

// Clone returns a deep copy so presets are never mutated by callers.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Bodies = make([]BodyConfig, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Friction != nil {
			f := *b.Friction
			b.Friction = &f
		}
		if b.Restitution != nil {
			r := *b.Restitution
			b.Restitution = &r
		}
		c.Bodies[i] = b
	}
	return &c
}

func Float(v float64) *float64 { return &v }
