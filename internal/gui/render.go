package gui

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	labelOffset   = 20
	labelFontSize = 14
	sphereRings   = 16
	sphereSlices  = 16
)

// Backend implements scene.Backend with raylib immediate-mode drawing. Draw
// only records the projection; Render replays the scene inside a raylib
// frame, so the window keeps its picture between scene frames.
type Backend struct {
	width, height int

	spheres []*sphere
	lines   []*line
	points  []*points
	labels  []*label

	proj     camera.Projection
	drawn    bool
	disposed bool
	font     rl.Font
	hasFont  bool
}

var _ scene.Backend = (*Backend)(nil)

func NewBackend(width, height int) *Backend {
	return &Backend{width: width, height: height}
}

type sphere struct {
	b      *Backend
	radius float32
	color  rl.Color
	pos    rl.Vector3
}

func (s *sphere) SetPosition(p r3.Vec) { s.pos = vec(p) }
func (s *sphere) Dispose()             { s.b.spheres = remove(s.b.spheres, s) }

type line struct {
	b       *Backend
	pts     []rl.Vector3
	color   rl.Color
	visible bool
}

func (l *line) SetVisible(v bool) { l.visible = v }
func (l *line) Dispose()          { l.b.lines = remove(l.b.lines, l) }

// points keeps a star field as one vertex buffer. It reaches the GPU on the
// first Render, so handles can be built before a window exists.
type points struct {
	b     *Backend
	verts []float32
	color rl.Color
	size  float32

	mesh     rl.Mesh
	material rl.Material
	uploaded bool
}

func (p *points) Dispose() {
	p.release()
	p.b.points = remove(p.b.points, p)
}

// upload needs a live GL context.
func (p *points) upload() {
	if p.uploaded || len(p.verts) == 0 {
		return
	}
	p.mesh = rl.Mesh{
		VertexCount:   int32(len(p.verts) / 3),
		TriangleCount: int32(len(p.verts) / 9),
		Vertices:      &p.verts[0],
	}
	rl.UploadMesh(&p.mesh, false)
	// the GPU holds the copy now; keep Go memory out of later C calls
	p.mesh.Vertices = nil
	p.material = rl.LoadMaterialDefault()
	p.material.GetMap(rl.MapDiffuse).Color = p.color
	p.uploaded = true
}

func (p *points) release() {
	if !p.uploaded {
		return
	}
	rl.UnloadMesh(&p.mesh)
	rl.UnloadMaterial(p.material)
	p.uploaded = false
}

type label struct {
	b       *Backend
	text    string
	color   rl.Color
	x, y    float32
	visible bool
}

func (l *label) Place(x, y float64) { l.x, l.y = float32(x), float32(y) }
func (l *label) SetVisible(v bool)  { l.visible = v }
func (l *label) Dispose()           { l.b.labels = remove(l.b.labels, l) }

func (b *Backend) NewSphere(radius float64, color uint32, opacity float64) scene.Mesh {
	s := &sphere{b: b, radius: float32(radius), color: rgba(color, opacity)}
	b.spheres = append(b.spheres, s)
	return s
}

func (b *Backend) NewLine(pts []r3.Vec, color uint32, opacity float64) scene.Line {
	l := &line{b: b, pts: vecs(pts), color: rgba(color, opacity), visible: true}
	b.lines = append(b.lines, l)
	return l
}

func (b *Backend) NewPoints(pts []r3.Vec, color uint32, size float64) scene.Points {
	p := &points{b: b, verts: flatten(pts), color: rgba(color, 1), size: float32(size)}
	b.points = append(b.points, p)
	return p
}

func (b *Backend) NewLabel(text string, color uint32) scene.Label {
	l := &label{b: b, text: text, color: rgba(color, 1)}
	b.labels = append(b.labels, l)
	return l
}

func (b *Backend) Size() (int, int) { return b.width, b.height }

func (b *Backend) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	b.width, b.height = w, h
}

func (b *Backend) Draw(p camera.Projection) {
	if b.disposed {
		return
	}
	b.proj = p
	b.drawn = true
}

func (b *Backend) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	for _, p := range b.points {
		p.release()
	}
	if b.hasFont {
		rl.UnloadFont(b.font)
		b.hasFont = false
	}
}

// Live counts handles not yet released.
func (b *Backend) Live() int {
	return len(b.spheres) + len(b.lines) + len(b.points) + len(b.labels)
}

func (b *Backend) Disposed() bool { return b.disposed }

// SetFont switches labels to f; the backend unloads it on Dispose.
func (b *Backend) SetFont(f rl.Font) {
	b.font, b.hasFont = f, true
}

// Render draws the last recorded frame. It must be called between
// rl.BeginDrawing and rl.EndDrawing.
func (b *Backend) Render() {
	if b.disposed || !b.drawn {
		return
	}
	rl.BeginMode3D(camera3D(b.proj))
	b.renderPoints()
	for _, l := range b.lines {
		if !l.visible {
			continue
		}
		for i := 1; i < len(l.pts); i++ {
			rl.DrawLine3D(l.pts[i-1], l.pts[i], l.color)
		}
	}
	for _, s := range b.depthSorted() {
		rl.DrawSphereEx(s.pos, s.radius, sphereRings, sphereSlices, s.color)
	}
	rl.EndMode3D()

	for _, l := range b.labels {
		if !l.visible {
			continue
		}
		x, y := labelOrigin(l.x, l.y, b.measure(l.text))
		if b.hasFont {
			rl.DrawTextEx(b.font, l.text, rl.NewVector2(x, y), labelFontSize, 1, l.color)
		} else {
			rl.DrawText(l.text, int32(x), int32(y), labelFontSize, l.color)
		}
	}
}

// renderPoints draws each star field with a single call: the mesh triangles
// are rasterised as their vertices only, the way raylib draws model points.
func (b *Backend) renderPoints() {
	if len(b.points) == 0 {
		return
	}
	rl.EnablePointMode()
	rl.DisableBackfaceCulling()
	for _, p := range b.points {
		p.upload()
		if p.uploaded {
			rl.DrawMesh(p.mesh, p.material, rl.MatrixIdentity())
		}
	}
	rl.EnableBackfaceCulling()
	// back to filled polygons
	rl.DisableWireMode()
}

func (b *Backend) measure(text string) float32 {
	if b.hasFont {
		return rl.MeasureTextEx(b.font, text, labelFontSize, 1).X
	}
	return float32(rl.MeasureText(text, labelFontSize))
}

// depthSorted orders spheres far-to-near so translucent ones blend over
// what is behind them.
func (b *Backend) depthSorted() []*sphere {
	out := make([]*sphere, len(b.spheres))
	copy(out, b.spheres)
	sort.SliceStable(out, func(i, j int) bool {
		di := b.proj.Depth(r3Vec(out[i].pos))
		dj := b.proj.Depth(r3Vec(out[j].pos))
		if di != dj {
			return di > dj
		}
		return out[i].radius > out[j].radius
	})
	return out
}

// labelOrigin centres text of the given width above the anchor point.
func labelOrigin(x, y, width float32) (float32, float32) {
	return x - width/2, y - labelOffset
}

func camera3D(p camera.Projection) rl.Camera3D {
	return rl.NewCamera3D(vec(p.Position), vec(p.Target), vec(p.Up), float32(p.FOV), rl.CameraPerspective)
}

func rgba(color uint32, opacity float64) rl.Color {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	r, g, b := catalog.RGB(color)
	return rl.NewColor(r, g, b, uint8(opacity*255+0.5))
}

func vec(p r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(p.X), float32(p.Y), float32(p.Z))
}

func r3Vec(v rl.Vector3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func vecs(pts []r3.Vec) []rl.Vector3 {
	out := make([]rl.Vector3, len(pts))
	for i, p := range pts {
		out[i] = vec(p)
	}
	return out
}

// flatten packs points as xyz triples and pads the buffer to whole
// triangles by repeating the last point.
func flatten(pts []r3.Vec) []float32 {
	if len(pts) == 0 {
		return nil
	}
	n := (len(pts) + 2) / 3 * 3
	out := make([]float32, 0, n*3)
	for i := range n {
		p := pts[min(i, len(pts)-1)]
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

func remove[T comparable](s []T, v T) []T {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
