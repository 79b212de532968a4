package physics

import "math"

// CollisionDistance is the separation below which two bodies are considered
// to be in contact. Bodies have no size of their own.
const CollisionDistance = 1.0

// DefaultGravity points down the Y axis at standard gravity.
var DefaultGravity = Vector{X: 0, Y: -9.81}

// World owns an ordered set of bodies and advances them one external
// timestep at a time. It never pairs bodies on its own; collision checks are
// issued by the driver for whichever pairs it selects.
//
// A World is not safe for concurrent use.
type World struct {
	gravity Vector
	bodies  []*Body
}

func NewWorld(gravity Vector) *World {
	return &World{gravity: gravity}
}

// NewDefaultWorld returns a World with DefaultGravity.
func NewDefaultWorld() *World {
	return NewWorld(DefaultGravity)
}

func (w *World) Gravity() Vector { return w.gravity }
func (w *World) Len() int        { return len(w.bodies) }

// Bodies returns the owned bodies in update order. The slice is a copy; the
// bodies are not.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Body returns the i-th body in update order, or nil when out of range.
func (w *World) Body(i int) *Body {
	if i < 0 || i >= len(w.bodies) {
		return nil
	}
	return w.bodies[i]
}

// AddBody appends b. Adding the same body twice makes it step twice.
func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes the first body that is b or equal to it field by
// field. It reports whether anything was removed.
func (w *World) RemoveBody(b *Body) bool {
	if b == nil {
		return false
	}
	for i, o := range w.bodies {
		if o == b || *o == *b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot copies the state of every body in update order.
func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b.State()
	}
	return out
}

// Step advances every body by dt seconds using explicit Euler.
//
// Gravity is applied through ApplyForce and integrated into velocity. When
// the body is moving, friction is then applied through ApplyForce as well,
// which replaces the gravity acceleration but is never integrated: the
// accumulator is cleared before the next step. Bodies that end below y = 0
// are clamped to the ground and bounce with their restitution.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		w.stepBody(b, dt)
	}
}

func (w *World) stepBody(b *Body, dt float64) {
	b.ApplyForce(w.gravity.Scale(b.mass))

	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))

	if !b.Velocity.IsZero() {
		magnitude := b.friction * b.mass * math.Abs(w.gravity.Y)
		direction := Vector{-sign(b.Velocity.X), -sign(b.Velocity.Y)}
		b.ApplyForce(direction.Scale(magnitude))
	}

	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	b.Acceleration = Vector{}

	if b.Position.Y < 0 {
		b.Position.Y = 0
		b.Velocity.Y = -b.Velocity.Y * b.restitution
	}
}

// CheckCollision reports whether a and b are closer than CollisionDistance.
func (w *World) CheckCollision(a, b *Body) bool {
	return CheckCollision(a, b)
}

// ResolveCollision applies an equal and opposite impulse along the line
// joining a and b. See the package function of the same name.
func (w *World) ResolveCollision(a, b *Body) {
	ResolveCollision(a, b)
}

// CheckCollision is the world-independent point proximity test.
func CheckCollision(a, b *Body) bool {
	return a.Position.Distance(b.Position) < CollisionDistance
}

// ResolveCollision exchanges a normal impulse between a and b using the
// smaller of the two restitutions. Only the normal component of the
// relative velocity changes. It does not check for contact; callers gate on
// CheckCollision. Coincident bodies are left untouched.
func ResolveCollision(a, b *Body) {
	_ = ResolveCollisionChecked(a, b)
}

// ResolveCollisionChecked is ResolveCollision but returns
// ErrDegenerateGeometry instead of silently skipping coincident bodies.
func ResolveCollisionChecked(a, b *Body) error {
	delta := b.Position.Sub(a.Position)
	distance := delta.Len()
	if distance == 0 {
		return ErrDegenerateGeometry
	}

	normal := delta.Scale(1 / distance)
	relative := b.Velocity.Add(a.Velocity.Scale(-1))
	e := math.Min(a.restitution, b.restitution)

	j := -(1 + e) * relative.Dot(normal) / (1/a.mass + 1/b.mass)

	impulse := normal.Scale(j)
	a.Velocity = a.Velocity.Add(impulse.Scale(-1 / a.mass))
	b.Velocity = b.Velocity.Add(impulse.Scale(1 / b.mass))
	return nil
}
