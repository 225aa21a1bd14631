package scene

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	SunRadius   = 3.0
	SunColor    = 0xfdb813
	GlowRadius  = 3.5
	GlowOpacity = 0.3

	StarCount  = 10000
	StarSpread = 2000.0
	StarColor  = 0xffffff
	StarSize   = 0.7

	OrbitOpacity = 0.3
	LabelColor   = 0xffffff
)

// StarField scatters n points uniformly in a cube of side spread centred on
// the origin. The same seed always yields the same field.
func StarField(n int, spread float64, seed int64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = r3.Vec{
			X: (rng.Float64() - 0.5) * spread,
			Y: (rng.Float64() - 0.5) * spread,
			Z: (rng.Float64() - 0.5) * spread,
		}
	}
	return pts
}
