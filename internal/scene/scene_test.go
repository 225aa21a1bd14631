package scene

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/loop"
	"gonum.org/v1/gonum/spatial/r3"
)

type recorder struct {
	events   []string
	released map[string]int
	next     int
	w, h     int
	draws    int
	labels   []*fakeLabel
	lines    []*fakeLine
	meshes   []*fakeMesh
}

func newRecorder() *recorder {
	return &recorder{released: map[string]int{}, w: 800, h: 600}
}

func (r *recorder) handle(kind string) string {
	r.next++
	name := fmt.Sprintf("%s#%d", kind, r.next)
	r.events = append(r.events, "new "+name)
	return name
}

func (r *recorder) release(name string) {
	r.released[name]++
	r.events = append(r.events, "dispose "+name)
}

type fakeMesh struct {
	r      *recorder
	name   string
	radius float64
	pos    r3.Vec
}

func (m *fakeMesh) SetPosition(p r3.Vec) { m.pos = p }
func (m *fakeMesh) Dispose()             { m.r.release(m.name) }

type fakeLine struct {
	r       *recorder
	name    string
	points  []r3.Vec
	visible bool
}

func (l *fakeLine) SetVisible(v bool) { l.visible = v }
func (l *fakeLine) Dispose()          { l.r.release(l.name) }

type fakePoints struct {
	r    *recorder
	name string
	n    int
}

func (p *fakePoints) Dispose() { p.r.release(p.name) }

type fakeLabel struct {
	r       *recorder
	name    string
	text    string
	x, y    float64
	visible bool
	placed  int
}

func (l *fakeLabel) Place(x, y float64) { l.x, l.y = x, y; l.placed++ }
func (l *fakeLabel) SetVisible(v bool)  { l.visible = v }
func (l *fakeLabel) Dispose()           { l.r.release(l.name) }

func (r *recorder) NewSphere(radius float64, color uint32, opacity float64) Mesh {
	m := &fakeMesh{r: r, name: r.handle("sphere"), radius: radius}
	r.meshes = append(r.meshes, m)
	return m
}

func (r *recorder) NewLine(points []r3.Vec, color uint32, opacity float64) Line {
	l := &fakeLine{r: r, name: r.handle("line"), points: points}
	r.lines = append(r.lines, l)
	return l
}

func (r *recorder) NewPoints(points []r3.Vec, color uint32, size float64) Points {
	return &fakePoints{r: r, name: r.handle("points"), n: len(points)}
}

func (r *recorder) NewLabel(text string, color uint32) Label {
	l := &fakeLabel{r: r, name: r.handle("label"), text: text}
	r.labels = append(r.labels, l)
	return l
}

func (r *recorder) Size() (int, int)         { return r.w, r.h }
func (r *recorder) Resize(w, h int)          { r.w, r.h = w, h }
func (r *recorder) Draw(p camera.Projection) { r.draws++; r.events = append(r.events, "draw") }
func (r *recorder) Dispose()                 { r.release("surface") }

type fixture struct {
	rec   *recorder
	queue *loop.Queue
	m     *Manager
	log   *bytes.Buffer
}

func newFixture(opts Options) *fixture {
	rec := newRecorder()
	q := loop.New(loop.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	var buf bytes.Buffer
	cam := camera.New(camera.DefaultDistance, camera.DefaultLimits())
	m := New(rec, cam, q, opts, zerolog.New(&buf))
	return &fixture{rec: rec, queue: q, m: m, log: &buf}
}

func smallOptions() Options {
	o := DefaultOptions()
	o.StarCount = 16
	return o
}

func TestDecorCreated(t *testing.T) {
	f := newFixture(DefaultOptions())
	want := []string{"new sphere#1", "new sphere#2", "new points#3"}
	for i, w := range want {
		if f.rec.events[i] != w {
			t.Fatalf("event %d: got %q, want %q", i, f.rec.events[i], w)
		}
	}
	if f.rec.meshes[0].radius != SunRadius || f.rec.meshes[1].radius != GlowRadius {
		t.Error("unexpected sun geometry")
	}
	if f.m.camera.Aspect() != 800.0/600.0 {
		t.Errorf("camera aspect not synced: %f", f.m.camera.Aspect())
	}
}

func TestStarFieldDeterministic(t *testing.T) {
	a := StarField(100, StarSpread, 42)
	b := StarField(100, StarSpread, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed produced different fields")
		}
		for _, c := range []float64{a[i].X, a[i].Y, a[i].Z} {
			if c < -StarSpread/2 || c > StarSpread/2 {
				t.Fatalf("star %d outside cube: %v", i, a[i])
			}
		}
	}
}

func TestCreateBodyIdempotent(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Earth)
	f.m.CreateBody(catalog.Earth)
	if len(f.rec.meshes) != 3 {
		t.Errorf("expected one body mesh beside the decor, got %d meshes", len(f.rec.meshes))
	}
	if len(f.rec.labels) != 1 || f.rec.labels[0].text != "Earth" {
		t.Errorf("expected one Earth label, got %v", f.rec.labels)
	}
}

func TestCreateBodyUnknown(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Unknown)
	f.m.CreateOrbit(catalog.Unknown, []r3.Vec{{X: 1}})
	f.m.UpdatePosition(catalog.Unknown, r3.Vec{X: 1}, 10)
	if len(f.rec.meshes) != 2 || len(f.rec.lines) != 0 {
		t.Error("unknown body created entities")
	}
	if !strings.Contains(f.log.String(), "unknown body") {
		t.Errorf("expected a warning, got %q", f.log.String())
	}
}

func TestLabelsDisabledAtCreation(t *testing.T) {
	opts := smallOptions()
	opts.ShowLabels = false
	f := newFixture(opts)
	f.m.CreateBody(catalog.Mars)
	if len(f.rec.labels) != 0 {
		t.Fatal("label created while labels hidden")
	}
	f.m.SetShowLabels(true)
	if len(f.rec.labels) != 1 || f.rec.labels[0].text != "Mars" {
		t.Fatal("enabling labels should create the missing label")
	}
	f.m.SetShowLabels(true)
	if len(f.rec.labels) != 1 {
		t.Error("enabling twice created another label")
	}
}

func TestCreateOrbitReplaces(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateOrbit(catalog.Venus, []r3.Vec{{X: 1}, {X: 2}})
	f.m.CreateOrbit(catalog.Venus, []r3.Vec{{X: 3}})
	if len(f.rec.lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(f.rec.lines))
	}
	if f.rec.released[f.rec.lines[0].name] != 1 {
		t.Error("previous orbit line not released")
	}
	if !f.m.HasOrbit(catalog.Venus) || !f.rec.lines[1].visible {
		t.Error("replacement orbit should be visible")
	}
}

func TestOrbitVisibility(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateOrbit(catalog.Earth, []r3.Vec{{X: 1}})
	f.m.SetShowOrbits(false)
	f.m.SetShowOrbits(false)
	if f.rec.lines[0].visible {
		t.Error("orbit still visible")
	}
	f.m.CreateOrbit(catalog.Mars, []r3.Vec{{X: 1}})
	if f.rec.lines[1].visible {
		t.Error("new orbit should follow the hidden flag")
	}
	f.m.SetShowOrbits(true)
	if !f.rec.lines[0].visible || !f.rec.lines[1].visible {
		t.Error("orbits not shown again")
	}
}

func TestCreateOrbitCopiesPoints(t *testing.T) {
	f := newFixture(smallOptions())
	pts := []r3.Vec{{X: 1}, {X: 2}}
	f.m.CreateOrbit(catalog.Earth, pts)
	pts[0] = r3.Vec{X: 99}
	if f.rec.lines[0].points[0].X != 1 {
		t.Error("orbit line aliases caller's slice")
	}
}

func TestUpdatePositionScalesAndPermutes(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Earth)
	f.m.UpdatePosition(catalog.Earth, r3.Vec{X: 1, Y: 2, Z: 3}, 10)

	mesh := f.rec.meshes[2]
	want := r3.Vec{X: 10, Y: 30, Z: 20}
	if mesh.pos != want {
		t.Errorf("mesh at %v, want %v", mesh.pos, want)
	}
	if got, _ := f.m.Position(catalog.Earth); got != want {
		t.Errorf("recorded position %v", got)
	}
	if f.rec.labels[0].placed != 1 {
		t.Error("label not re-projected on update")
	}

	f.m.UpdatePosition(catalog.Earth, r3.Vec{X: 1}, 0)
	if mesh.pos != (r3.Vec{X: 10}) {
		t.Errorf("default scale not applied: %v", mesh.pos)
	}
}

func TestLabelHiddenBehindCamera(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Jupiter)
	eye := f.m.camera.Projection().Position
	// Ecliptic (x, y, z) maps to scene (x, z, y).
	behind := r3.Vec{X: eye.X / 5, Y: eye.Z / 5, Z: eye.Y / 5}
	f.m.UpdatePosition(catalog.Jupiter, behind, 10)
	if f.rec.labels[0].visible {
		t.Error("label behind the camera should be hidden")
	}
	f.m.UpdatePosition(catalog.Jupiter, r3.Vec{}, 10)
	if !f.rec.labels[0].visible {
		t.Error("label at the origin should be visible")
	}
}

func TestFrameDrawsOnce(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Earth)
	f.m.CreateBody(catalog.Mars)
	f.m.Frame()
	if f.rec.draws != 1 {
		t.Errorf("expected 1 draw, got %d", f.rec.draws)
	}
	for _, l := range f.rec.labels {
		if l.placed != 1 {
			t.Errorf("%s placed %d times", l.text, l.placed)
		}
	}
	last := f.rec.events[len(f.rec.events)-1]
	if last != "draw" {
		t.Errorf("draw should come after projection, last event %q", last)
	}
}

func TestSetShowLabelsHides(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Earth)
	f.m.Frame()
	f.m.SetShowLabels(false)
	if f.rec.labels[0].visible {
		t.Error("label still visible")
	}
	placed := f.rec.labels[0].placed
	f.m.Frame()
	if f.rec.labels[0].placed != placed {
		t.Error("hidden labels should not be re-projected")
	}
}

func TestAnimation(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.StartAnimation(100 * time.Millisecond)
	f.m.StartAnimation(100 * time.Millisecond)
	if f.rec.draws != 1 {
		t.Fatalf("start should draw immediately once, got %d", f.rec.draws)
	}
	f.queue.Advance(time.Second)
	if f.rec.draws != 11 {
		t.Errorf("expected 11 draws after 1s, got %d", f.rec.draws)
	}
	f.m.StopAnimation()
	f.m.StopAnimation()
	f.queue.Advance(time.Second)
	if f.rec.draws != 11 || f.queue.Len() != 0 {
		t.Error("animation kept running after stop")
	}
}

func TestResize(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.Resize(1000, 500)
	if f.rec.w != 1000 || f.m.camera.Aspect() != 2 {
		t.Error("resize not forwarded")
	}
	f.m.Resize(0, 10)
	if f.rec.w != 1000 {
		t.Error("degenerate resize should be ignored")
	}
}

func TestDisposeOrderAndOnce(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.CreateBody(catalog.Earth)
	f.m.CreateOrbit(catalog.Earth, []r3.Vec{{X: 1}})
	f.m.StartAnimation(50 * time.Millisecond)

	f.m.Dispose()
	f.m.Dispose()

	for name, n := range f.rec.released {
		if n != 1 {
			t.Errorf("%s released %d times", name, n)
		}
	}
	if len(f.rec.released) != 7 {
		t.Errorf("expected 7 released resources, got %d: %v", len(f.rec.released), f.rec.released)
	}

	var order []string
	for _, e := range f.rec.events {
		if strings.HasPrefix(e, "dispose ") {
			order = append(order, strings.SplitN(strings.TrimPrefix(e, "dispose "), "#", 2)[0])
		}
	}
	want := []string{"sphere", "line", "label", "sphere", "sphere", "points", "surface"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("dispose order %v, want %v", order, want)
	}

	draws := f.rec.draws
	f.queue.Advance(time.Second)
	if f.rec.draws != draws {
		t.Error("frame ran after dispose")
	}
}

func TestUseAfterDispose(t *testing.T) {
	f := newFixture(smallOptions())
	f.m.Dispose()
	n := len(f.rec.events)

	f.m.CreateBody(catalog.Earth)
	f.m.CreateOrbit(catalog.Earth, []r3.Vec{{X: 1}})
	f.m.UpdatePosition(catalog.Earth, r3.Vec{X: 1}, 10)
	f.m.SetShowLabels(true)
	f.m.SetShowOrbits(true)
	f.m.Frame()
	f.m.StartAnimation(time.Millisecond)
	f.m.Resize(10, 10)

	if len(f.rec.events) != n {
		t.Errorf("backend touched after dispose: %v", f.rec.events[n:])
	}
	if !f.m.Disposed() {
		t.Error("manager should report disposed")
	}
}
