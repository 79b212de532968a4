package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pocketphys/internal/physics"
)

const tol = 1e-9

func body(pos, vel physics.Vector, mass float64, opts ...physics.BodyOption) *physics.Body {
	b, err := physics.NewBody(pos, vel, mass, opts...)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("World", func() {
	var w *physics.World

	BeforeEach(func() {
		w = physics.NewDefaultWorld()
	})

	Describe("body management", func() {
		It("keeps insertion order", func() {
			a := body(physics.Vec(0, 1), physics.Vector{}, 1)
			b := body(physics.Vec(0, 2), physics.Vector{}, 1)
			w.AddBody(a)
			w.AddBody(b)

			Expect(w.Len()).To(Equal(2))
			Expect(w.Bodies()).To(Equal([]*physics.Body{a, b}))
			Expect(w.Body(1)).To(BeIdenticalTo(b))
			Expect(w.Body(2)).To(BeNil())
		})

		It("removes the first structurally equal body", func() {
			a := body(physics.Vec(0, 1), physics.Vector{}, 1)
			twin := body(physics.Vec(0, 1), physics.Vector{}, 1)
			other := body(physics.Vec(5, 5), physics.Vector{}, 1)
			w.AddBody(a)
			w.AddBody(other)

			Expect(w.RemoveBody(twin)).To(BeTrue())
			Expect(w.Bodies()).To(Equal([]*physics.Body{other}))
		})

		It("ignores removal of an absent body", func() {
			a := body(physics.Vec(0, 1), physics.Vector{}, 1)
			w.AddBody(a)

			absent := body(physics.Vec(3, 3), physics.Vector{}, 1)
			Expect(w.RemoveBody(absent)).To(BeFalse())
			Expect(w.RemoveBody(nil)).To(BeFalse())
			Expect(w.Len()).To(Equal(1))
		})

		It("steps an empty world without effect", func() {
			Expect(func() { w.Step(0.1) }).NotTo(Panic())
			Expect(w.Snapshot()).To(BeEmpty())
		})
	})

	Describe("Step", func() {
		It("does not drift without gravity or velocity", func() {
			w = physics.NewWorld(physics.Vector{})
			b := body(physics.Vec(3, 4), physics.Vector{}, 2, physics.WithFriction(0))
			w.AddBody(b)

			for i := 0; i < 1000; i++ {
				w.Step(0.016)
			}
			Expect(b.Position).To(Equal(physics.Vec(3, 4)))
			Expect(b.Velocity.IsZero()).To(BeTrue())
		})

		It("falls independently of mass", func() {
			light := body(physics.Vec(0, 1000), physics.Vec(0, 2), 0.5, physics.WithFriction(0))
			heavy := body(physics.Vec(0, 1000), physics.Vec(0, 2), 50, physics.WithFriction(0))
			w.AddBody(light)
			w.AddBody(heavy)

			const n, dt = 40, 0.05
			for i := 0; i < n; i++ {
				w.Step(dt)
			}
			want := 2 + physics.DefaultGravity.Y*n*dt
			Expect(light.Velocity.Y).To(BeNumerically("~", want, 1e-9))
			Expect(heavy.Velocity.Y).To(BeNumerically("~", want, 1e-9))
			Expect(light.Position.Y).To(BeNumerically("~", heavy.Position.Y, 1e-9))
		})

		It("matches the Euler replay of a ten step drop", func() {
			b := body(physics.Vec(0, 10), physics.Vector{}, 1,
				physics.WithFriction(0), physics.WithRestitution(0.8))
			w.AddBody(b)

			y, v := 10.0, 0.0
			for i := 0; i < 10; i++ {
				w.Step(0.1)

				v += -9.81 * 0.1
				y += v * 0.1
				if y < 0 {
					y = 0
					v = -v * 0.8
				}
				Expect(b.Position.Y).To(BeNumerically("~", y, tol))
				Expect(b.Velocity.Y).To(BeNumerically("~", v, tol))
			}

			Expect(b.Position.Y).To(BeNumerically("~", 4.6045, 1e-9))
			Expect(b.Velocity.Y).To(BeNumerically("~", -9.81, 1e-9))
			Expect(b.Position.X).To(BeZero())
		})

		It("clears the acceleration accumulator", func() {
			b := body(physics.Vec(0, 10), physics.Vec(1, 0), 1)
			w.AddBody(b)
			w.Step(0.1)
			Expect(b.Acceleration.IsZero()).To(BeTrue())
		})

		It("leaves the trajectory untouched by friction", func() {
			rough := body(physics.Vec(0, 10), physics.Vec(3, 1), 1, physics.WithFriction(0.9))
			smooth := body(physics.Vec(0, 10), physics.Vec(3, 1), 1, physics.WithFriction(0))
			w.AddBody(rough)
			w.AddBody(smooth)

			for i := 0; i < 20; i++ {
				w.Step(0.05)
			}
			Expect(rough.Position).To(Equal(smooth.Position))
			Expect(rough.Velocity).To(Equal(smooth.Velocity))
		})

		It("moves a body horizontally at constant speed", func() {
			b := body(physics.Vec(0, 10), physics.Vec(2, 0), 1)
			w.AddBody(b)
			w.Step(0.5)
			Expect(b.Velocity.X).To(Equal(2.0))
			Expect(b.Position.X).To(Equal(1.0))
		})
	})

	Describe("ground constraint", func() {
		It("clamps to zero and bounces with restitution", func() {
			b := body(physics.Vec(0, 0.05), physics.Vec(0, -1), 1,
				physics.WithFriction(0), physics.WithRestitution(0.5))
			w.AddBody(b)
			w.Step(0.1)

			vBefore := -1 + physics.DefaultGravity.Y*0.1
			Expect(b.Position.Y).To(Equal(0.0))
			Expect(b.Velocity.Y).To(BeNumerically("~", -vBefore*0.5, tol))
			Expect(b.Velocity.Y).To(BeNumerically(">", 0))
		})

		It("stops dead with restitution zero", func() {
			b := body(physics.Vec(0, 0.05), physics.Vec(0, -1), 1, physics.WithRestitution(0))
			w.AddBody(b)

			for i := 0; i < 5; i++ {
				w.Step(0.1)
				Expect(b.Position.Y).To(BeNumerically(">=", 0))
				Expect(b.Position.Y).To(Equal(0.0))
				Expect(b.Velocity.Y).To(BeNumerically("<=", 0))
			}
			Expect(b.Velocity.Y).To(BeNumerically("~", 0, tol))
		})

		It("accepts a negative dt without failing", func() {
			b := body(physics.Vec(0, 5), physics.Vector{}, 1)
			w.AddBody(b)
			w.Step(-0.1)
			Expect(b.State().IsValid()).To(BeTrue())
		})
	})

	Describe("CheckCollision", func() {
		DescribeTable("point proximity",
			func(pa, pb physics.Vector, want bool) {
				a := body(pa, physics.Vector{}, 1)
				b := body(pb, physics.Vector{}, 1)
				Expect(w.CheckCollision(a, b)).To(Equal(want))
				Expect(w.CheckCollision(b, a)).To(Equal(want))
			},
			Entry("close pair", physics.Vec(0, 0), physics.Vec(0.5, 0), true),
			Entry("distant pair", physics.Vec(0, 0), physics.Vec(5, 0), false),
			Entry("exactly at threshold", physics.Vec(0, 0), physics.Vec(1, 0), false),
			Entry("coincident", physics.Vec(2, 2), physics.Vec(2, 2), true),
			Entry("diagonal inside", physics.Vec(-0.3, 0.1), physics.Vec(0.2, -0.4), true),
		)
	})

	Describe("ResolveCollision", func() {
		momentum := func(bodies ...*physics.Body) physics.Vector {
			var p physics.Vector
			for _, b := range bodies {
				p = p.Add(b.Momentum())
			}
			return p
		}

		It("swaps velocities of equal elastic masses", func() {
			a := body(physics.Vec(0, 0), physics.Vec(1, 0), 1, physics.WithRestitution(1))
			b := body(physics.Vec(0.5, 0), physics.Vec(-1, 0), 1, physics.WithRestitution(1))
			before := momentum(a, b)

			w.ResolveCollision(a, b)

			Expect(a.Velocity.X).To(BeNumerically("~", -1, tol))
			Expect(b.Velocity.X).To(BeNumerically("~", 1, tol))
			after := momentum(a, b)
			Expect(after.X).To(BeNumerically("~", before.X, tol))
			Expect(after.Y).To(BeNumerically("~", before.Y, tol))
		})

		It("conserves momentum for unequal masses", func() {
			a := body(physics.Vec(0, 0), physics.Vec(1, 0.5), 1, physics.WithRestitution(0.8))
			b := body(physics.Vec(0.3, 0.4), physics.Vec(-0.5, 0), 2, physics.WithRestitution(0.5))
			before := momentum(a, b)

			physics.ResolveCollision(a, b)

			after := momentum(a, b)
			Expect(after.X).To(BeNumerically("~", before.X, tol))
			Expect(after.Y).To(BeNumerically("~", before.Y, tol))
		})

		It("uses the smaller restitution", func() {
			a := body(physics.Vec(0, 0), physics.Vec(1, 0), 1, physics.WithRestitution(1))
			b := body(physics.Vec(0.5, 0), physics.Vec(-1, 0), 1, physics.WithRestitution(0))

			w.ResolveCollision(a, b)

			Expect(a.Velocity.X).To(BeNumerically("~", 0, tol))
			Expect(b.Velocity.X).To(BeNumerically("~", 0, tol))
		})

		It("changes only the normal component", func() {
			a := body(physics.Vec(0, 0), physics.Vec(1, 3), 1, physics.WithRestitution(1))
			b := body(physics.Vec(0.5, 0), physics.Vec(-1, -2), 1, physics.WithRestitution(1))

			w.ResolveCollision(a, b)

			Expect(a.Velocity.Y).To(Equal(3.0))
			Expect(b.Velocity.Y).To(Equal(-2.0))
		})

		It("does nothing for coincident bodies", func() {
			a := body(physics.Vec(1, 1), physics.Vec(1, 0), 1)
			b := body(physics.Vec(1, 1), physics.Vec(-1, 0), 3)

			w.ResolveCollision(a, b)

			Expect(a.Velocity).To(Equal(physics.Vec(1, 0)))
			Expect(b.Velocity).To(Equal(physics.Vec(-1, 0)))
			Expect(physics.ResolveCollisionChecked(a, b)).To(MatchError(physics.ErrDegenerateGeometry))
		})

		It("applies the impulse even when bodies are apart", func() {
			a := body(physics.Vec(0, 0), physics.Vec(1, 0), 1, physics.WithRestitution(1))
			b := body(physics.Vec(10, 0), physics.Vector{}, 1, physics.WithRestitution(1))

			Expect(w.CheckCollision(a, b)).To(BeFalse())
			w.ResolveCollision(a, b)

			Expect(a.Velocity.X).To(BeNumerically("~", 0, tol))
			Expect(b.Velocity.X).To(BeNumerically("~", 1, tol))
		})
	})

	Describe("Snapshot", func() {
		It("copies body state", func() {
			b := body(physics.Vec(0, 10), physics.Vector{}, 1)
			w.AddBody(b)
			snap := w.Snapshot()
			w.Step(0.1)

			Expect(snap).To(HaveLen(1))
			Expect(snap[0].Position.Y).To(Equal(10.0))
			Expect(math.IsNaN(b.Position.Y)).To(BeFalse())
		})
	})
})
