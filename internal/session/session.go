// Package session wires the position provider, orbit sampler, camera, scene
// and playback into one running visualization.
package session

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/ephemeris"
	"github.com/san-kum/orrery/internal/loop"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/position"
	"github.com/san-kum/orrery/internal/scene"
)

// Status is what a host shows around the scene.
type Status struct {
	Title   string
	At      time.Time
	Date    string
	Speed   string
	Running bool
	Orbits  bool
	Labels  bool
}

type Session struct {
	cfg *config.Config
	log zerolog.Logger

	sched    loop.Scheduler
	provider *position.Provider
	sampler  *orbit.Sampler
	camera   *camera.Controller
	scene    *scene.Manager
	playback *playback.Controller

	bodies  []catalog.ID
	anchor  time.Time
	started bool
	closed  bool
}

// New builds a session drawing through backend. cfg is normalized in place.
func New(cfg *config.Config, backend scene.Backend, sched loop.Scheduler, eph ephemeris.Ephemeris, log zerolog.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Normalize(log)

	s := &Session{
		cfg:    cfg,
		log:    log.With().Str("component", "session").Logger(),
		sched:  sched,
		bodies: cfg.Bodies(log),
	}
	s.provider = position.NewProvider(eph, log)
	s.sampler = orbit.NewSampler(s.provider, position.AUScale)
	s.camera = camera.New(cfg.CameraDistance, cfg.CameraLimits())

	opts := scene.DefaultOptions()
	opts.ShowOrbits = cfg.ShowOrbits
	opts.ShowLabels = cfg.ShowLabels
	s.scene = scene.New(backend, s.camera, sched, opts, log)

	s.playback = playback.New(sched, s, playback.Options{
		Interval: cfg.Interval(),
		Speed:    cfg.AnimationSpeed,
		Source:   cfg.Source(),
	}, log)
	return s
}

// Start creates the bodies and their orbits, then starts drawing and playback.
// Orbits are anchored at the current wall-clock time and keep that anchor for
// the rest of the session.
func (s *Session) Start() {
	if s.started || s.closed {
		return
	}
	s.started = true
	s.anchor = s.sched.Now()

	for _, id := range s.bodies {
		s.scene.CreateBody(id)
	}
	if s.cfg.ShowOrbits {
		s.createOrbits()
	}
	s.scene.StartAnimation(s.cfg.FrameInterval())
	s.playback.Start()

	s.log.Info().Int("bodies", len(s.bodies)).Str("date_source", s.cfg.DateSource).Msg("session started")
}

// Update implements playback.Updater.
func (s *Session) Update(at time.Time) {
	for _, id := range s.bodies {
		s.scene.UpdatePosition(id, s.provider.HeliocentricPosition(id, at), position.AUScale)
	}
}

func (s *Session) createOrbits() {
	for _, id := range s.bodies {
		if s.scene.HasOrbit(id) {
			continue
		}
		path := s.sampler.Sample(id, s.anchor, s.cfg.OrbitSamples)
		s.scene.CreateOrbit(id, path.Points)
	}
}

func (s *Session) TogglePlayPause() { s.playback.TogglePlayPause() }
func (s *Session) Reset()           { s.playback.Reset() }
func (s *Session) SlowDown()        { s.playback.SlowDown() }
func (s *Session) SpeedUp()         { s.playback.SpeedUp() }

// SetShowOrbits toggles orbit lines, sampling any that were never created.
func (s *Session) SetShowOrbits(show bool) {
	if s.closed {
		return
	}
	s.cfg.ShowOrbits = show
	if show && s.started {
		s.createOrbits()
	}
	s.scene.SetShowOrbits(show)
}

func (s *Session) SetShowLabels(show bool) {
	if s.closed {
		return
	}
	s.cfg.ShowLabels = show
	s.scene.SetShowLabels(show)
}

func (s *Session) ToggleOrbits() { s.SetShowOrbits(!s.scene.ShowOrbits()) }
func (s *Session) ToggleLabels() { s.SetShowLabels(!s.scene.ShowLabels()) }

func (s *Session) PointerDown(x, y float64) { s.camera.PointerDown(x, y) }
func (s *Session) PointerMove(x, y float64) { s.camera.PointerMove(x, y) }
func (s *Session) PointerUp()               { s.camera.PointerUp() }
func (s *Session) PointerLeave()            { s.camera.PointerLeave() }
func (s *Session) Wheel(dy float64)         { s.camera.Wheel(dy) }

func (s *Session) Resize(w, h int) { s.scene.Resize(w, h) }

func (s *Session) Status() Status {
	at := s.playback.At()
	return Status{
		Title:   s.cfg.Title,
		At:      at,
		Date:    playback.FormatDate(at),
		Speed:   playback.FormatSpeed(s.playback.Speed()),
		Running: s.playback.Running(),
		Orbits:  s.scene.ShowOrbits(),
		Labels:  s.scene.ShowLabels(),
	}
}

func (s *Session) Bodies() []catalog.ID {
	out := make([]catalog.ID, len(s.bodies))
	copy(out, s.bodies)
	return out
}

func (s *Session) Anchor() time.Time              { return s.anchor }
func (s *Session) Camera() *camera.Controller     { return s.camera }
func (s *Session) Scene() *scene.Manager          { return s.scene }
func (s *Session) Playback() *playback.Controller { return s.playback }
func (s *Session) Config() *config.Config         { return s.cfg }

// Close stops playback before disposing the scene. It is safe to call twice.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.playback.Stop()
	s.scene.Dispose()
	s.log.Info().Uint64("frames", s.scene.Frames()).Msg("session closed")
}

func (s *Session) Closed() bool { return s.closed }
