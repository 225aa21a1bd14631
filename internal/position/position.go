// Package position converts (body, instant) pairs into heliocentric
// positions and the scalar quantities derived from them. Every call degrades
// to a neutral value instead of failing.
package position

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/ephemeris"
	"gonum.org/v1/gonum/spatial/r3"
)

// AUScale is the number of scene units per astronomical unit.
const AUScale = 10.0

// ToScene scales an ecliptic position into scene space. Ecliptic z becomes
// the render "up" axis.
func ToScene(p r3.Vec, scale float64) r3.Vec {
	return r3.Vec{X: p.X * scale, Y: p.Z * scale, Z: p.Y * scale}
}

// FromScene inverts ToScene.
func FromScene(p r3.Vec, scale float64) r3.Vec {
	return r3.Vec{X: p.X / scale, Y: p.Z / scale, Z: p.Y / scale}
}

type Provider struct {
	eph ephemeris.Ephemeris
	log zerolog.Logger
}

func NewProvider(eph ephemeris.Ephemeris, log zerolog.Logger) *Provider {
	return &Provider{eph: eph, log: log.With().Str("component", "position").Logger()}
}

// HeliocentricPosition returns the body's position in AU, or the origin when
// the body is unknown or the ephemeris fails.
func (p *Provider) HeliocentricPosition(id catalog.ID, t time.Time) (pos r3.Vec) {
	if !id.Known() {
		p.log.Warn().Str("body", id.String()).Int("body_id", int(id)).Msg("unknown body")
		return r3.Vec{}
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().Str("body", id.String()).Int("body_id", int(id)).Time("at", t).Err(fmt.Errorf("%v", r)).Msg("ephemeris panicked")
			pos = r3.Vec{}
		}
	}()
	v, err := p.eph.HeliocentricPosition(id, t)
	if err != nil {
		p.log.Warn().Str("body", id.String()).Int("body_id", int(id)).Time("at", t).Err(err).Msg("ephemeris failed")
		return r3.Vec{}
	}
	return v
}

func (p *Provider) OrbitalPeriodDays(id catalog.ID) float64 {
	return catalog.PeriodDays(id)
}

func (p *Provider) SemiMajorAxisAU(id catalog.ID) float64 {
	return catalog.SemiMajorAU(id)
}

func (p *Provider) DistanceFromOrigin(id catalog.ID, t time.Time) float64 {
	return r3.Norm(p.HeliocentricPosition(id, t))
}

// Positions evaluates every id at the same instant.
func (p *Provider) Positions(t time.Time, ids []catalog.ID) map[catalog.ID]r3.Vec {
	out := make(map[catalog.ID]r3.Vec, len(ids))
	for _, id := range ids {
		out[id] = p.HeliocentricPosition(id, t)
	}
	return out
}
