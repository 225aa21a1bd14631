// Package term draws the scene on a braille canvas for terminal hosts.
package term

import (
	"sort"

	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// minBrightness keeps translucent geometry readable on a dark terminal.
const minBrightness = 0.45

// Backend implements scene.Backend on a Canvas. Sizes are in braille dots:
// one terminal cell is 2 dots wide and 4 tall.
type Backend struct {
	canvas *Canvas

	spheres map[*sphere]struct{}
	lines   map[*line]struct{}
	points  map[*points]struct{}
	labels  map[*label]struct{}

	created  int
	released int
	disposed bool
	frame    string
}

var _ scene.Backend = (*Backend)(nil)

// NewBackend creates a backend for a cols×rows terminal area.
func NewBackend(cols, rows int) *Backend {
	return &Backend{
		canvas:  NewCanvas(cols, rows),
		spheres: make(map[*sphere]struct{}),
		lines:   make(map[*line]struct{}),
		points:  make(map[*points]struct{}),
		labels:  make(map[*label]struct{}),
	}
}

type sphere struct {
	b       *Backend
	radius  float64
	color   uint32
	opacity float64
	pos     r3.Vec
	order   int
}

func (s *sphere) SetPosition(p r3.Vec) { s.pos = p }
func (s *sphere) Dispose() {
	if _, ok := s.b.spheres[s]; ok {
		delete(s.b.spheres, s)
		s.b.released++
	}
}

type line struct {
	b       *Backend
	pts     []r3.Vec
	color   uint32
	visible bool
}

func (l *line) SetVisible(v bool) { l.visible = v }
func (l *line) Dispose() {
	if _, ok := l.b.lines[l]; ok {
		delete(l.b.lines, l)
		l.b.released++
	}
}

type points struct {
	b     *Backend
	pts   []r3.Vec
	color uint32
}

func (p *points) Dispose() {
	if _, ok := p.b.points[p]; ok {
		delete(p.b.points, p)
		p.b.released++
	}
}

type label struct {
	b       *Backend
	text    string
	color   uint32
	x, y    float64
	visible bool
}

func (l *label) Place(x, y float64) { l.x, l.y = x, y }
func (l *label) SetVisible(v bool)  { l.visible = v }
func (l *label) Dispose() {
	if _, ok := l.b.labels[l]; ok {
		delete(l.b.labels, l)
		l.b.released++
	}
}

func (b *Backend) NewSphere(radius float64, color uint32, opacity float64) scene.Mesh {
	b.created++
	s := &sphere{b: b, radius: radius, color: color, opacity: opacity, order: b.created}
	b.spheres[s] = struct{}{}
	return s
}

func (b *Backend) NewLine(pts []r3.Vec, color uint32, opacity float64) scene.Line {
	l := &line{b: b, pts: pts, color: dim(color, opacity), visible: true}
	b.lines[l] = struct{}{}
	return l
}

func (b *Backend) NewPoints(pts []r3.Vec, color uint32, size float64) scene.Points {
	p := &points{b: b, pts: pts, color: dim(color, minBrightness)}
	b.points[p] = struct{}{}
	return p
}

func (b *Backend) NewLabel(text string, color uint32) scene.Label {
	l := &label{b: b, text: text, color: color}
	b.labels[l] = struct{}{}
	return l
}

func (b *Backend) Size() (int, int) { return b.canvas.PixelSize() }

// Resize takes a size in dots and rounds it down to whole cells.
func (b *Backend) Resize(w, h int) {
	if b.disposed || w <= 0 || h <= 0 {
		return
	}
	b.canvas = NewCanvas(w/2, h/4)
}

// ResizeCells resizes to a cols×rows terminal area.
func (b *Backend) ResizeCells(cols, rows int) { b.Resize(cols*2, rows*4) }

// Draw rasterises stars, orbit lines, spheres far-to-near, then labels.
func (b *Backend) Draw(p camera.Projection) {
	if b.disposed {
		return
	}
	c := b.canvas
	c.Clear()
	w, h := c.PixelSize()

	for pc := range b.points {
		for _, pt := range pc.pts {
			if x, y, ok := p.Project(pt, w, h); ok {
				c.Set(int(x), int(y), pc.color)
			}
		}
	}

	for _, l := range b.sortedLines() {
		if !l.visible {
			continue
		}
		for i := 1; i < len(l.pts); i++ {
			x0, y0, ok0 := p.Project(l.pts[i-1], w, h)
			x1, y1, ok1 := p.Project(l.pts[i], w, h)
			if ok0 && ok1 {
				c.DrawLine(int(x0), int(y0), int(x1), int(y1), l.color)
			}
		}
	}

	spheres := make([]*sphere, 0, len(b.spheres))
	for s := range b.spheres {
		spheres = append(spheres, s)
	}
	sort.Slice(spheres, func(i, j int) bool {
		di, dj := p.Depth(spheres[i].pos), p.Depth(spheres[j].pos)
		if di != dj {
			return di > dj
		}
		if spheres[i].radius != spheres[j].radius {
			return spheres[i].radius > spheres[j].radius
		}
		return spheres[i].order < spheres[j].order
	})
	focal := p.FocalLength(h)
	for _, s := range spheres {
		if r3.Norm(r3.Sub(s.pos, p.Position)) < s.radius {
			// the eye is inside this sphere
			c.Fill(dim(s.color, s.opacity))
			continue
		}
		x, y, ok := p.Project(s.pos, w, h)
		if !ok {
			continue
		}
		r := s.radius * focal / p.Depth(s.pos)
		c.FillCircle(int(x), int(y), r, dim(s.color, s.opacity))
	}

	for _, l := range b.sortedLabels() {
		if !l.visible {
			continue
		}
		col := int(l.x)/2 - len(l.text)/2
		row := int(l.y)/4 - 1
		c.Text(col, row, l.text, l.color)
	}

	b.frame = c.Render()
}

// View returns the last drawn frame.
func (b *Backend) View() string { return b.frame }

func (b *Backend) Canvas() *Canvas { return b.canvas }

// Released counts handles released so far.
func (b *Backend) Released() int { return b.released }

func (b *Backend) Live() int {
	return len(b.spheres) + len(b.lines) + len(b.points) + len(b.labels)
}

func (b *Backend) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.frame = ""
}

func (b *Backend) Disposed() bool { return b.disposed }

func (b *Backend) sortedLines() []*line {
	ls := make([]*line, 0, len(b.lines))
	for l := range b.lines {
		ls = append(ls, l)
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].color < ls[j].color })
	return ls
}

func (b *Backend) sortedLabels() []*label {
	ls := make([]*label, 0, len(b.labels))
	for l := range b.labels {
		ls = append(ls, l)
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].text < ls[j].text })
	return ls
}

// dim blends color toward black, never below minBrightness.
func dim(color uint32, opacity float64) uint32 {
	if opacity >= 1 {
		return color
	}
	if opacity < minBrightness {
		opacity = minBrightness
	}
	r, g, b := catalog.RGB(color)
	scale := func(v uint8) uint32 { return uint32(float64(v) * opacity) }
	return scale(r)<<16 | scale(g)<<8 | scale(b)
}
