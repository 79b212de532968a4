package physics

import "math"

// Vector is a 2D value. Every operation returns a new Vector.
type Vector struct {
	X, Y float64
}

func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Add returns the componentwise sum a + b.
func Add(a, b Vector) Vector {
	return Vector{a.X + b.X, a.Y + b.Y}
}

// Scale returns v with both components multiplied by k.
func Scale(v Vector, k float64) Vector {
	return Vector{v.X * k, v.Y * k}
}

func (v Vector) Add(o Vector) Vector {
	return Add(v, o)
}

func (v Vector) Scale(k float64) Vector {
	return Scale(v, k)
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y}
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the Euclidean length of v.
func (v Vector) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector) Distance(o Vector) float64 {
	return o.Sub(v).Len()
}

func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// sign maps 0 to 0, unlike math.Copysign which carries the sign bit of zero.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
