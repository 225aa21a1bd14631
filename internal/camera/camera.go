// Package camera implements the orbiting camera: drag rotates around the
// origin, the wheel zooms, and every projection is derived fresh from State.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	RotateSpeed = 0.005
	ZoomSpeed   = 0.05
	MaxVertical = math.Pi / 2.5

	InitialVertical   = math.Pi / 6
	InitialHorizontal = 0.0

	DefaultDistance    = 80.0
	DefaultMinDistance = 20.0
	DefaultMaxDistance = 300.0

	FOV  = 45.0
	Near = 0.1
	Far  = 2000.0
)

// Limits bounds the camera distance.
type Limits struct {
	Min, Max float64
}

func DefaultLimits() Limits {
	return Limits{Min: DefaultMinDistance, Max: DefaultMaxDistance}
}

// Valid reports whether the limits describe a non-empty positive range.
func (l Limits) Valid() bool {
	return l.Min > 0 && l.Max >= l.Min && !math.IsInf(l.Max, 0)
}

func (l Limits) Clamp(d float64) float64 {
	if math.IsNaN(d) {
		return l.Min
	}
	return math.Max(l.Min, math.Min(l.Max, d))
}

// State is the full camera state. Transitions return a new value and never
// touch the receiver.
type State struct {
	Distance   float64
	Horizontal float64
	Vertical   float64
	Dragging   bool
	LastX      float64
	LastY      float64
}

func Initial(distance float64, lim Limits) State {
	return State{
		Distance:   lim.Clamp(distance),
		Horizontal: InitialHorizontal,
		Vertical:   InitialVertical,
	}
}

func (s State) PointerDown(x, y float64) State {
	s.Dragging = true
	s.LastX, s.LastY = x, y
	return s
}

// PointerMove rotates while dragging and is ignored otherwise.
func (s State) PointerMove(x, y float64) State {
	if !s.Dragging {
		return s
	}
	dx, dy := x-s.LastX, y-s.LastY
	s.Horizontal += dx * RotateSpeed
	s.Vertical = clampVertical(s.Vertical - dy*RotateSpeed)
	s.LastX, s.LastY = x, y
	return s
}

func (s State) PointerUp() State {
	s.Dragging = false
	return s
}

func (s State) PointerLeave() State { return s.PointerUp() }

// Wheel zooms in any state. Positive dy moves the camera away.
func (s State) Wheel(dy float64, lim Limits) State {
	s.Distance = lim.Clamp(s.Distance + dy*ZoomSpeed)
	return s
}

// Eye converts the spherical state into a world position.
func (s State) Eye() r3.Vec {
	cv := math.Cos(s.Vertical)
	return r3.Vec{
		X: math.Cos(s.Horizontal) * cv * s.Distance,
		Y: math.Sin(s.Vertical) * s.Distance,
		Z: math.Sin(s.Horizontal) * cv * s.Distance,
	}
}

func clampVertical(v float64) float64 {
	return math.Max(-MaxVertical, math.Min(MaxVertical, v))
}

// Projection is a perspective camera looking at Target. FOV is vertical, in degrees.
type Projection struct {
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
}

// Project maps a world point to screen coordinates on a w×h surface. visible
// is false for points behind the camera or beyond the far plane; x and y are
// still returned for points in front but off screen.
func (p Projection) Project(pt r3.Vec, w, h int) (x, y float64, visible bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	fwd := r3.Unit(r3.Sub(p.Target, p.Position))
	right := r3.Unit(r3.Cross(fwd, p.Up))
	up := r3.Cross(right, fwd)

	rel := r3.Sub(pt, p.Position)
	depth := r3.Dot(rel, fwd)
	if depth <= p.Near || depth > p.Far {
		return 0, 0, false
	}

	aspect := p.Aspect
	if aspect <= 0 {
		aspect = float64(w) / float64(h)
	}
	t := math.Tan(p.FOV * math.Pi / 360)
	nx := r3.Dot(rel, right) / (depth * t * aspect)
	ny := r3.Dot(rel, up) / (depth * t)

	x = (nx + 1) / 2 * float64(w)
	y = (1 - ny) / 2 * float64(h)
	return x, y, true
}

// Depth is the distance of pt along the view direction.
func (p Projection) Depth(pt r3.Vec) float64 {
	fwd := r3.Unit(r3.Sub(p.Target, p.Position))
	return r3.Dot(r3.Sub(pt, p.Position), fwd)
}

// FocalLength is the number of screen units per world unit at depth 1 on a
// surface h units tall.
func (p Projection) FocalLength(h int) float64 {
	return float64(h) / 2 / math.Tan(p.FOV*math.Pi/360)
}

// Controller owns a State and the viewport aspect ratio.
type Controller struct {
	state  State
	limits Limits
	aspect float64
}

// New builds a controller at the given distance. Invalid limits fall back to
// the defaults.
func New(distance float64, lim Limits) *Controller {
	if !lim.Valid() {
		lim = DefaultLimits()
	}
	return &Controller{state: Initial(distance, lim), limits: lim, aspect: 1}
}

func (c *Controller) State() State    { return c.state }
func (c *Controller) Limits() Limits  { return c.limits }
func (c *Controller) Aspect() float64 { return c.aspect }

func (c *Controller) PointerDown(x, y float64) { c.state = c.state.PointerDown(x, y) }
func (c *Controller) PointerMove(x, y float64) { c.state = c.state.PointerMove(x, y) }
func (c *Controller) PointerUp()               { c.state = c.state.PointerUp() }
func (c *Controller) PointerLeave()            { c.state = c.state.PointerLeave() }
func (c *Controller) Wheel(dy float64)         { c.state = c.state.Wheel(dy, c.limits) }

func (c *Controller) SetDistance(d float64) {
	c.state.Distance = c.limits.Clamp(d)
}

// Resize only updates the aspect ratio.
func (c *Controller) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.aspect = float64(w) / float64(h)
}

func (c *Controller) Projection() Projection {
	return Projection{
		Position: c.state.Eye(),
		Up:       r3.Vec{Y: 1},
		FOV:      FOV,
		Aspect:   c.aspect,
		Near:     Near,
		Far:      Far,
	}
}

func (c *Controller) Project(pt r3.Vec, w, h int) (float64, float64, bool) {
	return c.Projection().Project(pt, w, h)
}
