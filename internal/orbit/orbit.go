package orbit

import (
	"time"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/position"
	"gonum.org/v1/gonum/spatial/r3"
)

const DefaultSamples = 100

// Path is one sampled revolution in scene space.
type Path struct {
	Body   catalog.ID
	Anchor time.Time
	Step   time.Duration
	Points []r3.Vec
}

// At is the instant of point i.
func (p Path) At(i int) time.Time {
	return p.Anchor.Add(time.Duration(i) * p.Step)
}

// Closure is the scene-space gap between the first and last point.
func (p Path) Closure() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	return r3.Norm(r3.Sub(p.Points[len(p.Points)-1], p.Points[0]))
}

type Sampler struct {
	provider *position.Provider
	scale    float64
}

func NewSampler(p *position.Provider, scale float64) *Sampler {
	if scale <= 0 {
		scale = position.AUScale
	}
	return &Sampler{provider: p, scale: scale}
}

// Sample returns n+1 points covering [anchor, anchor+period]. n <= 0 selects
// DefaultSamples.
func (s *Sampler) Sample(id catalog.ID, anchor time.Time, n int) Path {
	if n <= 0 {
		n = DefaultSamples
	}
	period := s.provider.OrbitalPeriodDays(id)
	step := time.Duration(period / float64(n) * 24 * float64(time.Hour))

	pts := make([]r3.Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		at := anchor.Add(time.Duration(i) * step)
		pts = append(pts, position.ToScene(s.provider.HeliocentricPosition(id, at), s.scale))
	}
	return Path{Body: id, Anchor: anchor, Step: step, Points: pts}
}
