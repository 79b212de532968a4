package physics

import "math"

const (
	DefaultFriction    = 0.1
	DefaultRestitution = 0.8
)

// Body is a point mass. Position, Velocity and Acceleration are mutated by
// the World that owns it; mass, friction and restitution are fixed at
// construction.
type Body struct {
	Position     Vector
	Velocity     Vector
	Acceleration Vector

	mass        float64
	friction    float64
	restitution float64
}

// BodyState is a value copy of a body, safe to hand to renderers.
type BodyState struct {
	Position    Vector
	Velocity    Vector
	Mass        float64
	Restitution float64
}

type BodyOption func(*Body)

// WithFriction sets the friction coefficient (must be >= 0).
func WithFriction(mu float64) BodyOption {
	return func(b *Body) { b.friction = mu }
}

// WithRestitution sets the bounce factor: 0 is fully inelastic, 1 fully elastic.
func WithRestitution(e float64) BodyOption {
	return func(b *Body) { b.restitution = e }
}

func WithAcceleration(a Vector) BodyOption {
	return func(b *Body) { b.Acceleration = a }
}

// NewBody validates the parameters and returns a body ready to be added to a
// World. A non-positive mass is rejected because force application and
// collision impulses divide by it.
func NewBody(position, velocity Vector, mass float64, opts ...BodyOption) (*Body, error) {
	b := &Body{
		Position:    position,
		Velocity:    velocity,
		mass:        mass,
		friction:    DefaultFriction,
		restitution: DefaultRestitution,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// MustBody is NewBody for fixed, known-good parameters. It panics on error.
func MustBody(position, velocity Vector, mass float64, opts ...BodyOption) *Body {
	b, err := NewBody(position, velocity, mass, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Body) validate() error {
	switch {
	case math.IsNaN(b.mass) || math.IsInf(b.mass, 0) || b.mass <= 0:
		return &ParameterError{Name: "mass", Value: b.mass, Reason: "must be finite and > 0"}
	case !isFinite(b.friction) || b.friction < 0:
		return &ParameterError{Name: "friction", Value: b.friction, Reason: "must be finite and >= 0"}
	case math.IsNaN(b.restitution) || b.restitution < 0 || b.restitution > 1:
		return &ParameterError{Name: "restitution", Value: b.restitution, Reason: "must be in [0, 1]"}
	case !b.Position.IsFinite() || !b.Velocity.IsFinite() || !b.Acceleration.IsFinite():
		return &ParameterError{Name: "state", Value: math.NaN(), Reason: "must be finite"}
	}
	return nil
}

// ApplyForce sets the acceleration to force/mass. It overwrites any previous
// acceleration; callers composing several forces must sum them first.
func (b *Body) ApplyForce(force Vector) {
	b.Acceleration = force.Scale(1.0 / b.mass)
}

func (b *Body) Mass() float64        { return b.mass }
func (b *Body) Friction() float64    { return b.friction }
func (b *Body) Restitution() float64 { return b.restitution }

func (b *Body) State() BodyState {
	return BodyState{
		Position:    b.Position,
		Velocity:    b.Velocity,
		Mass:        b.mass,
		Restitution: b.restitution,
	}
}

// Momentum returns m*v.
func (b *Body) Momentum() Vector {
	return b.Velocity.Scale(b.mass)
}

// IsValid reports whether the kinematic state is free of NaN and Inf.
func (s BodyState) IsValid() bool {
	return s.Position.IsFinite() && s.Velocity.IsFinite()
}
