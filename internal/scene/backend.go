package scene

import (
	"github.com/san-kum/orrery/internal/camera"
	"gonum.org/v1/gonum/spatial/r3"
)

// Backend is the graphics capability a Manager draws through. Every handle it
// returns is released by the Manager exactly once.
type Backend interface {
	NewSphere(radius float64, color uint32, opacity float64) Mesh
	NewLine(points []r3.Vec, color uint32, opacity float64) Line
	NewPoints(points []r3.Vec, color uint32, size float64) Points
	NewLabel(text string, color uint32) Label

	Size() (w, h int)
	Resize(w, h int)
	// Draw renders the whole scene once.
	Draw(p camera.Projection)
	Dispose()
}

type Mesh interface {
	SetPosition(p r3.Vec)
	Dispose()
}

type Line interface {
	SetVisible(v bool)
	Dispose()
}

type Points interface {
	Dispose()
}

// Label is a screen-space text overlay. Place receives the projected anchor
// point; backends apply their own offset.
type Label interface {
	Place(x, y float64)
	SetVisible(v bool)
	Dispose()
}

type disposer interface {
	Dispose()
}
