// Package scene owns every visual entity: body meshes, orbit lines, labels and
// the static decor. It draws through a Backend and never outlives Dispose.
package scene

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/loop"
	"github.com/san-kum/orrery/internal/position"
	"gonum.org/v1/gonum/spatial/r3"
)

type Options struct {
	ShowOrbits bool
	ShowLabels bool
	StarCount  int
	StarSeed   int64
}

func DefaultOptions() Options {
	return Options{ShowOrbits: true, ShowLabels: true, StarCount: StarCount, StarSeed: 1}
}

type entity struct {
	mesh     Mesh
	label    Label
	position r3.Vec
}

type Manager struct {
	backend Backend
	camera  *camera.Controller
	sched   loop.Scheduler
	log     zerolog.Logger

	entities map[catalog.ID]*entity
	orbits   map[catalog.ID]Line
	decor    []disposer

	showOrbits bool
	showLabels bool

	frame    *loop.Task
	interval time.Duration
	frames   uint64
	disposed bool
}

// New creates the sun, its glow and the star field immediately.
func New(b Backend, cam *camera.Controller, sched loop.Scheduler, opts Options, log zerolog.Logger) *Manager {
	m := &Manager{
		backend:    b,
		camera:     cam,
		sched:      sched,
		log:        log.With().Str("component", "scene").Logger(),
		entities:   make(map[catalog.ID]*entity),
		orbits:     make(map[catalog.ID]Line),
		showOrbits: opts.ShowOrbits,
		showLabels: opts.ShowLabels,
	}
	m.camera.Resize(b.Size())

	sun := b.NewSphere(SunRadius, SunColor, 1)
	glow := b.NewSphere(GlowRadius, SunColor, GlowOpacity)
	m.decor = append(m.decor, sun, glow)
	if opts.StarCount > 0 {
		m.decor = append(m.decor, b.NewPoints(StarField(opts.StarCount, StarSpread, opts.StarSeed), StarColor, StarSize))
	}
	return m
}

// CreateBody adds a mesh (and a label when labels are shown) for a catalog
// body. Repeat calls and unknown bodies do nothing.
func (m *Manager) CreateBody(id catalog.ID) {
	if m.disposed {
		return
	}
	body, ok := catalog.Lookup(id)
	if !ok {
		m.log.Warn().Int("body", int(id)).Msg("unknown body, not created")
		return
	}
	if _, exists := m.entities[id]; exists {
		return
	}
	e := &entity{mesh: m.backend.NewSphere(body.Size, body.Color, 1)}
	if m.showLabels {
		e.label = m.backend.NewLabel(body.DisplayName, LabelColor)
	}
	m.entities[id] = e
	m.log.Debug().Str("body", body.Name).Msg("body created")
}

// CreateOrbit replaces the body's orbit line with one through points, given
// in scene space.
func (m *Manager) CreateOrbit(id catalog.ID, points []r3.Vec) {
	if m.disposed {
		return
	}
	body, ok := catalog.Lookup(id)
	if !ok {
		m.log.Warn().Int("body", int(id)).Msg("unknown body, orbit skipped")
		return
	}
	if old, ok := m.orbits[id]; ok {
		old.Dispose()
		delete(m.orbits, id)
	}
	pts := make([]r3.Vec, len(points))
	copy(pts, points)
	line := m.backend.NewLine(pts, body.OrbitColor, OrbitOpacity)
	line.SetVisible(m.showOrbits)
	m.orbits[id] = line
}

func (m *Manager) HasOrbit(id catalog.ID) bool {
	_, ok := m.orbits[id]
	return ok
}

// UpdatePosition moves a body to an ecliptic position given in AU. scale <= 0
// uses position.AUScale.
func (m *Manager) UpdatePosition(id catalog.ID, pos r3.Vec, scale float64) {
	if m.disposed {
		return
	}
	e, ok := m.entities[id]
	if !ok {
		return
	}
	if scale <= 0 {
		scale = position.AUScale
	}
	e.position = position.ToScene(pos, scale)
	e.mesh.SetPosition(e.position)
	m.placeLabel(e, m.camera.Projection())
}

// Position returns the body's last scene position.
func (m *Manager) Position(id catalog.ID) (r3.Vec, bool) {
	e, ok := m.entities[id]
	if !ok {
		return r3.Vec{}, false
	}
	return e.position, true
}

func (m *Manager) SetShowOrbits(show bool) {
	if m.disposed {
		return
	}
	m.showOrbits = show
	for _, id := range sortedIDs(m.orbits) {
		m.orbits[id].SetVisible(show)
	}
}

// SetShowLabels toggles labels. Bodies created while labels were hidden get
// their label on the first enable.
func (m *Manager) SetShowLabels(show bool) {
	if m.disposed {
		return
	}
	m.showLabels = show
	proj := m.camera.Projection()
	for _, id := range sortedIDs(m.entities) {
		e := m.entities[id]
		if show && e.label == nil {
			body, _ := catalog.Lookup(id)
			e.label = m.backend.NewLabel(body.DisplayName, LabelColor)
		}
		if e.label == nil {
			continue
		}
		if show {
			m.placeLabel(e, proj)
		} else {
			e.label.SetVisible(false)
		}
	}
}

func (m *Manager) ShowOrbits() bool { return m.showOrbits }
func (m *Manager) ShowLabels() bool { return m.showLabels }

// Frame re-projects every label and draws once.
func (m *Manager) Frame() {
	if m.disposed {
		return
	}
	proj := m.camera.Projection()
	if m.showLabels {
		for _, id := range sortedIDs(m.entities) {
			m.placeLabel(m.entities[id], proj)
		}
	}
	m.backend.Draw(proj)
	m.frames++
}

func (m *Manager) Frames() uint64 { return m.frames }

// StartAnimation draws a frame now and then every interval until stopped.
func (m *Manager) StartAnimation(interval time.Duration) {
	if m.disposed || m.frame.Pending() {
		return
	}
	if interval <= 0 {
		interval = time.Second / 30
	}
	m.interval = interval
	m.animate()
}

func (m *Manager) animate() {
	m.frame = m.sched.AfterFunc(m.interval, m.animate)
	m.Frame()
}

func (m *Manager) StopAnimation() {
	m.frame.Cancel()
	m.frame = nil
}

func (m *Manager) Animating() bool { return m.frame.Pending() }

func (m *Manager) Resize(w, h int) {
	if m.disposed || w <= 0 || h <= 0 {
		return
	}
	m.camera.Resize(w, h)
	m.backend.Resize(w, h)
}

// Dispose stops the animation and releases meshes, orbit lines, labels, decor
// and finally the surface. Later calls do nothing.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.StopAnimation()
	m.disposed = true

	ids := sortedIDs(m.entities)
	for _, id := range ids {
		m.entities[id].mesh.Dispose()
	}
	for _, id := range sortedIDs(m.orbits) {
		m.orbits[id].Dispose()
	}
	for _, id := range ids {
		if l := m.entities[id].label; l != nil {
			l.Dispose()
		}
	}
	for _, d := range m.decor {
		d.Dispose()
	}
	m.backend.Dispose()

	m.entities = map[catalog.ID]*entity{}
	m.orbits = map[catalog.ID]Line{}
	m.decor = nil
	m.log.Debug().Uint64("frames", m.frames).Msg("scene disposed")
}

func (m *Manager) Disposed() bool { return m.disposed }

func (m *Manager) placeLabel(e *entity, proj camera.Projection) {
	if e.label == nil || !m.showLabels {
		return
	}
	w, h := m.backend.Size()
	x, y, ok := proj.Project(e.position, w, h)
	if !ok {
		e.label.SetVisible(false)
		return
	}
	e.label.Place(x, y)
	e.label.SetVisible(true)
}

func sortedIDs[V any](m map[catalog.ID]V) []catalog.ID {
	ids := make([]catalog.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
