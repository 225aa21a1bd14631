// Package playback owns the simulated clock. A Controller advances it on a
// self-rescheduling tick and pushes one update pass per tick to an Updater.
package playback

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/loop"
)

const (
	MinSpeed        = 0.1
	MaxSpeed        = 1000.0
	DefaultInterval = time.Second

	SlowerFactor = 0.5
	FasterFactor = 2.0

	DateLayout = "Jan 2, 2006, 03:04 PM"
)

// DateSource selects which instant an update pass uses.
type DateSource int

const (
	Simulated DateSource = iota
	Current
)

func (d DateSource) String() string {
	if d == Current {
		return "current"
	}
	return "simulated"
}

func ParseDateSource(s string) (DateSource, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simulated", "":
		return Simulated, true
	case "current":
		return Current, true
	default:
		return Simulated, false
	}
}

// State is the playback state. Transitions return a copy.
type State struct {
	Simulated time.Time
	Speed     float64
	Running   bool
}

func ClampSpeed(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(MinSpeed, math.Min(MaxSpeed, v))
}

// Advance moves the simulated clock by interval×speed while running.
func (s State) Advance(interval time.Duration) State {
	if !s.Running {
		return s
	}
	s.Simulated = s.Simulated.Add(time.Duration(float64(interval) * s.Speed))
	return s
}

func (s State) Scale(m float64) State {
	s.Speed = ClampSpeed(s.Speed * m)
	return s
}

func (s State) Toggle() State {
	s.Running = !s.Running
	return s
}

func (s State) ResetTo(now time.Time) State {
	s.Simulated = now
	return s
}

// Updater receives one update pass per tick.
type Updater interface {
	Update(at time.Time)
}

type UpdaterFunc func(at time.Time)

func (f UpdaterFunc) Update(at time.Time) { f(at) }

type Options struct {
	Interval time.Duration
	Speed    float64
	Source   DateSource
}

func DefaultOptions() Options {
	return Options{Interval: DefaultInterval, Speed: 1, Source: Simulated}
}

type Controller struct {
	state    State
	interval time.Duration
	source   DateSource
	sched    loop.Scheduler
	updater  Updater
	log      zerolog.Logger

	task    *loop.Task
	stopped bool
}

// New starts the simulated clock at the scheduler's current time, running.
func New(sched loop.Scheduler, u Updater, opts Options, log zerolog.Logger) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	return &Controller{
		state:    State{Simulated: sched.Now(), Speed: ClampSpeed(opts.Speed), Running: true},
		interval: opts.Interval,
		source:   opts.Source,
		sched:    sched,
		updater:  u,
		log:      log.With().Str("component", "playback").Logger(),
	}
}

// Start runs the first tick immediately. Later calls do nothing.
func (c *Controller) Start() {
	if c.stopped || c.task.Pending() {
		return
	}
	c.log.Debug().Dur("interval", c.interval).Float64("speed", c.state.Speed).Msg("playback started")
	c.Tick()
}

// Tick advances the clock and updates positions while running, then
// schedules the next tick one interval later.
func (c *Controller) Tick() {
	if c.stopped {
		return
	}
	c.task.Cancel()
	if c.state.Running {
		c.state = c.state.Advance(c.interval)
		c.update()
	}
	c.task = c.sched.AfterFunc(c.interval, c.Tick)
}

// TogglePlayPause flips the running flag without recomputing positions.
func (c *Controller) TogglePlayPause() {
	c.state = c.state.Toggle()
}

// Reset jumps the simulated clock to now and updates immediately, paused or not.
func (c *Controller) Reset() {
	if c.stopped {
		return
	}
	c.state = c.state.ResetTo(c.sched.Now())
	c.update()
}

func (c *Controller) SetSpeed(m float64) {
	c.state = c.state.Scale(m)
}

func (c *Controller) SlowDown() { c.SetSpeed(SlowerFactor) }
func (c *Controller) SpeedUp()  { c.SetSpeed(FasterFactor) }

// Stop cancels the pending tick. It is safe to call more than once.
func (c *Controller) Stop() {
	if c.stopped {
		return
	}
	c.task.Cancel()
	c.task = nil
	c.stopped = true
	c.log.Debug().Msg("playback stopped")
}

func (c *Controller) State() State             { return c.state }
func (c *Controller) Interval() time.Duration  { return c.interval }
func (c *Controller) Source() DateSource       { return c.source }
func (c *Controller) Running() bool            { return c.state.Running }
func (c *Controller) Stopped() bool            { return c.stopped }
func (c *Controller) Speed() float64           { return c.state.Speed }
func (c *Controller) SimulatedTime() time.Time { return c.state.Simulated }

// At is the instant an update pass uses under the configured date source.
func (c *Controller) At() time.Time {
	if c.source == Current {
		return c.sched.Now()
	}
	return c.state.Simulated
}

func (c *Controller) update() {
	if c.updater != nil {
		c.updater.Update(c.At())
	}
}

func FormatSpeed(s float64) string {
	switch {
	case s < 1:
		return fmt.Sprintf("%.2fx", s)
	case s < 100:
		return fmt.Sprintf("%.1fx", s)
	default:
		return fmt.Sprintf("%dx", int64(math.Round(s)))
	}
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
