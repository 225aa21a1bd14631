package camera_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/camera"
)

var _ = Describe("State", func() {
	lim := camera.DefaultLimits()

	It("starts at the initial angles", func() {
		s := camera.Initial(80, lim)
		Expect(s.Distance).To(Equal(80.0))
		Expect(s.Vertical).To(BeNumerically("~", math.Pi/6, 1e-12))
		Expect(s.Horizontal).To(BeZero())
		Expect(s.Dragging).To(BeFalse())
	})

	It("clamps the initial distance", func() {
		Expect(camera.Initial(5, lim).Distance).To(Equal(20.0))
		Expect(camera.Initial(1e6, lim).Distance).To(Equal(300.0))
	})

	It("rotates only while dragging", func() {
		s := camera.Initial(80, lim)
		Expect(s.PointerMove(100, 100)).To(Equal(s))

		s = s.PointerDown(10, 10).PointerMove(110, 30)
		Expect(s.Horizontal).To(BeNumerically("~", 100*camera.RotateSpeed, 1e-12))
		Expect(s.Vertical).To(BeNumerically("~", math.Pi/6-20*camera.RotateSpeed, 1e-12))
		Expect(s.LastX).To(Equal(110.0))

		up := s.PointerUp()
		Expect(up.Dragging).To(BeFalse())
		Expect(up.PointerMove(500, 500)).To(Equal(up))
	})

	It("stops dragging when the pointer leaves", func() {
		s := camera.Initial(80, lim).PointerDown(0, 0).PointerLeave()
		Expect(s.Dragging).To(BeFalse())
	})

	It("does not mutate the receiver", func() {
		s := camera.Initial(80, lim)
		_ = s.PointerDown(1, 2)
		_ = s.Wheel(100, lim)
		Expect(s).To(Equal(camera.Initial(80, lim)))
	})

	It("clamps a huge wheel delta to the maximum distance", func() {
		s := camera.Initial(80, lim).Wheel(10000, lim)
		Expect(s.Distance).To(Equal(300.0))
		s = s.Wheel(-1e9, lim)
		Expect(s.Distance).To(Equal(20.0))
	})

	It("zooms while dragging", func() {
		s := camera.Initial(80, lim).PointerDown(0, 0).Wheel(100, lim)
		Expect(s.Distance).To(BeNumerically("~", 85, 1e-9))
		Expect(s.Dragging).To(BeTrue())
	})

	It("keeps angles and distance bounded for any gesture sequence", func() {
		rng := rand.New(rand.NewSource(7))
		for run := 0; run < 200; run++ {
			s := camera.Initial(80, lim)
			for step := 0; step < 100; step++ {
				x, y := rng.Float64()*4000-2000, rng.Float64()*4000-2000
				switch rng.Intn(5) {
				case 0:
					s = s.PointerDown(x, y)
				case 1, 2:
					s = s.PointerMove(x, y)
				case 3:
					s = s.PointerUp()
				case 4:
					s = s.Wheel(rng.Float64()*20000-10000, lim)
				}
				Expect(math.Abs(s.Vertical)).To(BeNumerically("<=", camera.MaxVertical))
				Expect(s.Distance).To(BeNumerically(">=", lim.Min))
				Expect(s.Distance).To(BeNumerically("<=", lim.Max))
			}
		}
	})

	It("places the eye on a sphere of radius Distance", func() {
		s := camera.State{Distance: 50, Horizontal: 1.2, Vertical: -0.4}
		Expect(r3.Norm(s.Eye())).To(BeNumerically("~", 50, 1e-9))

		flat := camera.State{Distance: 10}
		Expect(flat.Eye()).To(Equal(r3.Vec{X: 10}))
	})
})

var _ = Describe("Controller", func() {
	var c *camera.Controller

	BeforeEach(func() {
		c = camera.New(camera.DefaultDistance, camera.DefaultLimits())
	})

	It("falls back to default limits when given invalid ones", func() {
		c = camera.New(80, camera.Limits{Min: 50, Max: 10})
		Expect(c.Limits()).To(Equal(camera.DefaultLimits()))
	})

	It("derives a fresh projection looking at the origin", func() {
		p := c.Projection()
		Expect(p.Target).To(Equal(r3.Vec{}))
		Expect(r3.Norm(p.Position)).To(BeNumerically("~", 80, 1e-9))
		Expect(p.FOV).To(Equal(45.0))
		Expect(p.Near).To(Equal(0.1))
		Expect(p.Far).To(Equal(2000.0))

		c.Wheel(200)
		Expect(r3.Norm(c.Projection().Position)).To(BeNumerically("~", 90, 1e-9))
		Expect(r3.Norm(p.Position)).To(BeNumerically("~", 80, 1e-9))
	})

	It("only changes the aspect on resize", func() {
		before := c.State()
		c.Resize(1600, 800)
		Expect(c.Aspect()).To(Equal(2.0))
		Expect(c.State()).To(Equal(before))

		c.Resize(0, 100)
		Expect(c.Aspect()).To(Equal(2.0))
	})

	It("clamps SetDistance", func() {
		c.SetDistance(1)
		Expect(c.State().Distance).To(Equal(20.0))
		c.SetDistance(120)
		Expect(c.State().Distance).To(Equal(120.0))
	})

	It("drives the gesture state machine", func() {
		c.PointerDown(0, 0)
		c.PointerMove(200, 0)
		c.PointerUp()
		c.PointerMove(400, 0)
		Expect(c.State().Horizontal).To(BeNumerically("~", 1.0, 1e-12))
	})

	Describe("Project", func() {
		BeforeEach(func() {
			c.Resize(800, 600)
		})

		It("puts the origin at the centre of the screen", func() {
			x, y, ok := c.Project(r3.Vec{}, 800, 600)
			Expect(ok).To(BeTrue())
			Expect(x).To(BeNumerically("~", 400, 1e-6))
			Expect(y).To(BeNumerically("~", 300, 1e-6))
		})

		It("hides points behind the camera", func() {
			eye := c.Projection().Position
			behind := r3.Scale(2, eye)
			_, _, ok := c.Project(behind, 800, 600)
			Expect(ok).To(BeFalse())
		})

		It("draws points above the plane higher on screen", func() {
			_, y, ok := c.Project(r3.Vec{Y: 10}, 800, 600)
			Expect(ok).To(BeTrue())
			Expect(y).To(BeNumerically("<", 300))
		})

		It("rejects an empty surface", func() {
			_, _, ok := c.Project(r3.Vec{}, 0, 0)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Projection", func() {
	p := camera.Projection{Position: r3.Vec{Z: 10}, Up: r3.Vec{Y: 1}, FOV: 90, Aspect: 1, Near: 0.1, Far: 100}

	It("measures depth along the view direction", func() {
		Expect(p.Depth(r3.Vec{})).To(BeNumerically("~", 10, 1e-9))
		Expect(p.Depth(r3.Vec{X: 5, Z: -5})).To(BeNumerically("~", 15, 1e-9))
	})

	It("derives the focal length from the field of view", func() {
		Expect(p.FocalLength(200)).To(BeNumerically("~", 100, 1e-9))
	})

	It("maps a point at the frustum edge to the screen edge", func() {
		x, y, ok := p.Project(r3.Vec{X: 10}, 200, 200)
		Expect(ok).To(BeTrue())
		Expect(x).To(BeNumerically("~", 200, 1e-9))
		Expect(y).To(BeNumerically("~", 100, 1e-9))
	})

	It("hides points beyond the far plane", func() {
		_, _, ok := p.Project(r3.Vec{Z: -200}, 200, 200)
		Expect(ok).To(BeFalse())
	})
})
