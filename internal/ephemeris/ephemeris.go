// Package ephemeris computes heliocentric planet positions from mean
// Keplerian elements (Standish, "Approximate Positions of the Planets",
// table 1, valid 1800 AD to 2050 AD).
package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	J2000          = 2451545.0
	DaysPerCentury = 36525.0
)

// Ephemeris yields heliocentric ecliptic positions in AU.
type Ephemeris interface {
	HeliocentricPosition(id catalog.ID, t time.Time) (r3.Vec, error)
}

// Func adapts a plain function to Ephemeris.
type Func func(id catalog.ID, t time.Time) (r3.Vec, error)

func (f Func) HeliocentricPosition(id catalog.ID, t time.Time) (r3.Vec, error) {
	return f(id, t)
}

// Elements are J2000 mean elements and their rates per Julian century.
// Angles are in degrees.
type Elements struct {
	A, E, I, L, LongPeri, Node       float64
	DA, DE, DI, DL, DLongPeri, DNode float64
}

var elements = map[catalog.ID]Elements{
	catalog.Mercury: {
		0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081,
	},
	catalog.Venus: {
		0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418,
	},
	catalog.Earth: {
		1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0,
	},
	catalog.Mars: {
		1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343,
	},
	catalog.Jupiter: {
		5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106,
	},
	catalog.Saturn: {
		9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794,
	},
	catalog.Uranus: {
		19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589,
	},
	catalog.Neptune: {
		30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664,
	},
}

// ElementsFor returns the mean elements of a catalog body.
func ElementsFor(id catalog.ID) (Elements, bool) {
	el, ok := elements[id]
	return el, ok
}

// At propagates the elements to T Julian centuries past J2000.
func (el Elements) At(T float64) Elements {
	return Elements{
		A:        el.A + el.DA*T,
		E:        el.E + el.DE*T,
		I:        el.I + el.DI*T,
		L:        el.L + el.DL*T,
		LongPeri: el.LongPeri + el.DLongPeri*T,
		Node:     el.Node + el.DNode*T,
	}
}

// Kepler is the default Ephemeris.
type Kepler struct {
	// Places is the decimal-place precision requested from the Kepler solver.
	Places int
}

func NewKepler() *Kepler {
	return &Kepler{Places: 10}
}

func (k *Kepler) HeliocentricPosition(id catalog.ID, t time.Time) (r3.Vec, error) {
	el, ok := elements[id]
	if !ok {
		return r3.Vec{}, fmt.Errorf("no elements for body %v", id)
	}
	T := Centuries(t)
	if math.IsNaN(T) || math.IsInf(T, 0) {
		return r3.Vec{}, fmt.Errorf("invalid instant %v", t)
	}
	cur := el.At(T)

	M := unit.AngleFromDeg(cur.L - cur.LongPeri).Mod1()
	E, err := kepler.Kepler2(cur.E, M, k.Places)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("kepler solve for %v: %w", id, err)
	}

	xp := cur.A * (E.Cos() - cur.E)
	yp := cur.A * math.Sqrt(1-cur.E*cur.E) * E.Sin()

	w := unit.AngleFromDeg(cur.LongPeri - cur.Node)
	node := unit.AngleFromDeg(cur.Node)
	inc := unit.AngleFromDeg(cur.I)
	sw, cw := w.Sin(), w.Cos()
	sn, cn := node.Sin(), node.Cos()
	si, ci := inc.Sin(), inc.Cos()

	pos := r3.Vec{
		X: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		Y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		Z: (sw*si)*xp + (cw*si)*yp,
	}
	if !finite(pos) {
		return r3.Vec{}, fmt.Errorf("non-finite position for %v at %v", id, t)
	}
	return pos, nil
}

// Centuries returns Julian centuries elapsed since J2000 for t.
func Centuries(t time.Time) float64 {
	return (julian.TimeToJD(t.UTC()) - J2000) / DaysPerCentury
}

func finite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
