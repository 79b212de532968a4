package viz

import (
	"math"

	"github.com/san-kum/pocketphys/internal/physics"
)

// BodyRadius is the drawn radius of every body, in world units.
const BodyRadius = 1.0

// Zoom limits, relative to the scale chosen by FitTo.
const (
	MinZoom = 1e-3
	MaxZoom = 1e3
)

// Renderer draws body snapshots onto a Canvas through a 2D camera. It holds
// no reference to the physics world; it only reads the states it is given.
type Renderer struct {
	canvas *Canvas
	colors map[int]Color
	camera physics.Vector
	zoom   float64
	scale  float64 // sub-pixels per world unit at zoom 1
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		canvas: NewCanvas(width, height),
		colors: make(map[int]Color),
		zoom:   1,
		scale:  1,
	}
}

func (r *Renderer) Canvas() *Canvas { return r.canvas }

// Resize replaces the canvas, keeping camera and colors.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.canvas = NewCanvas(width, height)
}

// AddBody assigns a color to the body at index i in snapshot order.
func (r *Renderer) AddBody(i int, c Color) {
	r.colors[i] = c
}

// RemoveBody drops the color of body i; it is then drawn white.
func (r *Renderer) RemoveBody(i int) {
	delete(r.colors, i)
}

func (r *Renderer) ColorOf(i int) Color {
	if c, ok := r.colors[i]; ok {
		return c
	}
	return White
}

func (r *Renderer) SetCamera(position physics.Vector, zoom float64) {
	r.camera = position
	if zoom > 0 {
		r.zoom = clampZoom(zoom)
	}
}

func (r *Renderer) Camera() (physics.Vector, float64) {
	return r.camera, r.zoom
}

// Pan moves the camera by a fraction of the visible width or height.
func (r *Renderer) Pan(fx, fy float64) {
	s := r.pixelsPerUnit()
	r.camera.X += fx * float64(r.canvas.SubWidth()) / s
	r.camera.Y += fy * float64(r.canvas.SubHeight()) / s
}

// Zoom multiplies the zoom by factor, within [MinZoom, MaxZoom].
func (r *Renderer) Zoom(factor float64) {
	if factor > 0 {
		r.zoom = clampZoom(r.zoom * factor)
	}
}

func clampZoom(z float64) float64 {
	return math.Min(math.Max(z, MinZoom), MaxZoom)
}

func (r *Renderer) pixelsPerUnit() float64 {
	return r.scale * r.zoom
}

// Project maps a world position to canvas sub-pixels. The camera position
// is the canvas centre and y grows upwards in world space.
func (r *Renderer) Project(p physics.Vector) (int, int) {
	s := r.pixelsPerUnit()
	cx := float64(r.canvas.SubWidth()) / 2
	cy := float64(r.canvas.SubHeight()) / 2
	x := cx + (p.X-r.camera.X)*s
	y := cy - (p.Y-r.camera.Y)*s
	return int(math.Round(x)), int(math.Round(y))
}

// FitTo centres the camera on the bodies and the ground line and chooses a
// scale at which all of them are visible with a small margin.
func (r *Renderer) FitTo(states []physics.BodyState) {
	minX, maxX := -BodyRadius, BodyRadius
	minY, maxY := 0.0, BodyRadius
	for _, s := range states {
		minX = math.Min(minX, s.Position.X-BodyRadius)
		maxX = math.Max(maxX, s.Position.X+BodyRadius)
		minY = math.Min(minY, s.Position.Y-BodyRadius)
		maxY = math.Max(maxY, s.Position.Y+BodyRadius)
	}

	const margin = 1.1
	w := (maxX - minX) * margin
	h := (maxY - minY) * margin
	sx := float64(r.canvas.SubWidth()) / w
	sy := float64(r.canvas.SubHeight()) / h

	r.scale = math.Min(sx, sy)
	r.zoom = 1
	r.camera = physics.Vec((minX+maxX)/2, (minY+maxY)/2)
}

// Draw clears the canvas and draws the ground line and every body.
func (r *Renderer) Draw(states []physics.BodyState) *Canvas {
	c := r.canvas
	c.Clear()

	if _, gy := r.Project(physics.Vector{}); gy >= 0 && gy < c.SubHeight() {
		c.DrawLine(0, gy, c.SubWidth()-1, gy)
	}

	radius := int(math.Round(BodyRadius * r.pixelsPerUnit()))
	for i, s := range states {
		x, y := r.Project(s.Position)
		c.FillCircle(x, y, radius, r.ColorOf(i).Hex())
	}
	return c
}
