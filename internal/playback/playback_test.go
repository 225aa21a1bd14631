package playback_test

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/orrery/internal/loop"
	"github.com/san-kum/orrery/internal/playback"
)

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var _ = Describe("State", func() {
	It("compounds speed changes", func() {
		s := playback.State{Speed: 1}
		s = s.Scale(2).Scale(2).Scale(2)
		Expect(s.Speed).To(Equal(8.0))
	})

	It("clamps speed to [0.1, 1000]", func() {
		Expect(playback.State{Speed: 1}.Scale(10000).Speed).To(Equal(1000.0))
		Expect(playback.State{Speed: 1}.Scale(0.0001).Speed).To(Equal(0.1))
	})

	It("keeps speed bounded for any sequence of changes", func() {
		rng := rand.New(rand.NewSource(3))
		s := playback.State{Speed: 1}
		for i := 0; i < 1000; i++ {
			s = s.Scale(rng.Float64() * 20)
			Expect(s.Speed).To(BeNumerically(">=", playback.MinSpeed))
			Expect(s.Speed).To(BeNumerically("<=", playback.MaxSpeed))
		}
	})

	It("advances only while running", func() {
		s := playback.State{Simulated: start, Speed: 10}
		Expect(s.Advance(time.Second).Simulated).To(Equal(start))
		s.Running = true
		Expect(s.Advance(time.Second).Simulated).To(Equal(start.Add(10 * time.Second)))
	})
})

var _ = Describe("Formatting", func() {
	DescribeTable("FormatSpeed",
		func(speed float64, want string) {
			Expect(playback.FormatSpeed(speed)).To(Equal(want))
		},
		Entry("fractional", 0.5, "0.50x"),
		Entry("minimum", 0.1, "0.10x"),
		Entry("real time", 1.0, "1.0x"),
		Entry("two doublings", 4.0, "4.0x"),
		Entry("just under 100", 99.5, "99.5x"),
		Entry("hundreds", 128.0, "128x"),
		Entry("rounded", 256.6, "257x"),
		Entry("maximum", 1000.0, "1000x"),
	)

	It("formats dates in the short US style", func() {
		Expect(playback.FormatDate(start)).To(Equal("Jun 1, 2025, 12:00 PM"))
		Expect(playback.FormatDate(start.Add(-3*time.Hour - 55*time.Minute))).To(Equal("Jun 1, 2025, 08:05 AM"))
	})

	DescribeTable("ParseDateSource",
		func(in string, want playback.DateSource, ok bool) {
			got, gotOK := playback.ParseDateSource(in)
			Expect(got).To(Equal(want))
			Expect(gotOK).To(Equal(ok))
		},
		Entry("simulated", "simulated", playback.Simulated, true),
		Entry("current", "Current", playback.Current, true),
		Entry("empty", "", playback.Simulated, true),
		Entry("unknown", "tomorrow", playback.Simulated, false),
	)
})

var _ = Describe("Controller", func() {
	var (
		clock  *loop.ManualClock
		queue  *loop.Queue
		passes []time.Time
		ctrl   *playback.Controller
	)

	newController := func(opts playback.Options) *playback.Controller {
		return playback.New(queue, playback.UpdaterFunc(func(at time.Time) {
			passes = append(passes, at)
		}), opts, zerolog.Nop())
	}

	BeforeEach(func() {
		clock = loop.NewManualClock(start)
		queue = loop.New(clock)
		passes = nil
		ctrl = newController(playback.DefaultOptions())
	})

	It("starts running at the scheduler's time", func() {
		Expect(ctrl.Running()).To(BeTrue())
		Expect(ctrl.SimulatedTime()).To(Equal(start))
		Expect(ctrl.Speed()).To(Equal(1.0))
	})

	It("ticks immediately on start and then once per interval", func() {
		ctrl.Start()
		Expect(passes).To(HaveLen(1))
		Expect(passes[0]).To(Equal(start.Add(time.Second)))

		queue.Advance(3 * time.Second)
		Expect(passes).To(HaveLen(4))
		Expect(ctrl.SimulatedTime()).To(Equal(start.Add(4 * time.Second)))
		Expect(queue.Len()).To(Equal(1))
	})

	It("ignores a second Start", func() {
		ctrl.Start()
		ctrl.Start()
		Expect(passes).To(HaveLen(1))
		Expect(queue.Len()).To(Equal(1))
	})

	It("scales the simulated step by speed", func() {
		ctrl.SpeedUp()
		ctrl.SpeedUp()
		Expect(playback.FormatSpeed(ctrl.Speed())).To(Equal("4.0x"))
		ctrl.Start()
		Expect(ctrl.SimulatedTime()).To(Equal(start.Add(4 * time.Second)))
		ctrl.SlowDown()
		Expect(ctrl.Speed()).To(Equal(2.0))
	})

	It("keeps ticking but freezes the clock while paused", func() {
		ctrl.Start()
		ctrl.TogglePlayPause()
		Expect(passes).To(HaveLen(1))

		queue.Advance(5 * time.Second)
		Expect(passes).To(HaveLen(1))
		Expect(ctrl.SimulatedTime()).To(Equal(start.Add(time.Second)))
		Expect(queue.Len()).To(Equal(1))

		ctrl.TogglePlayPause()
		queue.Advance(time.Second)
		Expect(passes).To(HaveLen(2))
	})

	It("resets to now with an immediate pass even when paused", func() {
		ctrl.SetSpeed(100)
		ctrl.Start()
		ctrl.TogglePlayPause()
		clock.Advance(10 * time.Minute)

		ctrl.Reset()
		Expect(ctrl.SimulatedTime()).To(Equal(clock.Now()))
		Expect(passes).To(HaveLen(2))
		Expect(passes[1]).To(Equal(clock.Now()))
	})

	It("uses wall-clock time with the current date source", func() {
		opts := playback.DefaultOptions()
		opts.Source = playback.Current
		opts.Speed = 1000
		ctrl = newController(opts)
		ctrl.Start()
		queue.Advance(2 * time.Second)
		Expect(passes).To(HaveLen(3))
		Expect(passes[2]).To(Equal(start.Add(2 * time.Second)))
		Expect(ctrl.SimulatedTime()).To(Equal(start.Add(3000 * time.Second)))
	})

	It("falls back to defaults for empty options", func() {
		ctrl = newController(playback.Options{})
		Expect(ctrl.Interval()).To(Equal(playback.DefaultInterval))
		Expect(ctrl.Speed()).To(Equal(1.0))
	})

	It("cancels the pending tick on stop", func() {
		ctrl.Start()
		ctrl.Stop()
		ctrl.Stop()
		Expect(queue.Len()).To(BeZero())

		queue.Advance(time.Minute)
		Expect(passes).To(HaveLen(1))

		ctrl.Tick()
		ctrl.Reset()
		ctrl.Start()
		Expect(passes).To(HaveLen(1))
		Expect(ctrl.Stopped()).To(BeTrue())
	})
})
