package catalog

import "strings"

// ID identifies a body in the static catalog. The zero value is Unknown.
type ID int

const (
	Unknown ID = iota
	Mercury
	Venus
	Earth
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
)

const (
	FallbackPeriodDays  = 365.26
	FallbackSemiMajorAU = 1.0
)

// Body is an immutable catalog entry.
type Body struct {
	ID          ID
	Name        string
	DisplayName string
	Color       uint32
	Size        float64
	OrbitColor  uint32
	Description string
}

var bodies = map[ID]Body{
	Mercury: {Mercury, "mercury", "Mercury", 0x8c7853, 0.38, 0x666666, "Closest planet to the Sun"},
	Venus:   {Venus, "venus", "Venus", 0xffc649, 0.95, 0x888888, "Second planet from the Sun"},
	Earth:   {Earth, "earth", "Earth", 0x0077be, 1.0, 0x4488ff, "Our home planet"},
	Mars:    {Mars, "mars", "Mars", 0xdc4e28, 0.53, 0xaa6666, "The Red Planet"},
	Jupiter: {Jupiter, "jupiter", "Jupiter", 0xc88b3a, 2.5, 0x996644, "Largest planet in our solar system"},
	Saturn:  {Saturn, "saturn", "Saturn", 0xfad5a5, 2.1, 0xddaa66, "The ringed planet"},
	Uranus:  {Uranus, "uranus", "Uranus", 0x4fd0e7, 1.6, 0x6699aa, "Ice giant with extreme tilt"},
	Neptune: {Neptune, "neptune", "Neptune", 0x4166f5, 1.5, 0x4455aa, "Farthest planet from the Sun"},
}

var periodDays = map[ID]float64{
	Mercury: 87.97,
	Venus:   224.7,
	Earth:   365.26,
	Mars:    686.98,
	Jupiter: 4332.59,
	Saturn:  10759.22,
	Uranus:  30688.5,
	Neptune: 60182,
}

var semiMajorAU = map[ID]float64{
	Mercury: 0.387,
	Venus:   0.723,
	Earth:   1.0,
	Mars:    1.524,
	Jupiter: 5.203,
	Saturn:  9.537,
	Uranus:  19.191,
	Neptune: 30.069,
}

// All returns every catalog ID in order from the Sun.
func All() []ID {
	return []ID{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune}
}

// Parse maps a body name to its ID, ignoring case and surrounding space.
func Parse(name string) (ID, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mercury":
		return Mercury, true
	case "venus":
		return Venus, true
	case "earth":
		return Earth, true
	case "mars":
		return Mars, true
	case "jupiter":
		return Jupiter, true
	case "saturn":
		return Saturn, true
	case "uranus":
		return Uranus, true
	case "neptune":
		return Neptune, true
	default:
		return Unknown, false
	}
}

func Lookup(id ID) (Body, bool) {
	b, ok := bodies[id]
	return b, ok
}

func (id ID) Known() bool {
	_, ok := bodies[id]
	return ok
}

func (id ID) String() string {
	if b, ok := bodies[id]; ok {
		return b.Name
	}
	return "unknown"
}

// PeriodDays returns the sidereal orbital period in Earth days, or
// FallbackPeriodDays for ids outside the catalog.
func PeriodDays(id ID) float64 {
	if p, ok := periodDays[id]; ok {
		return p
	}
	return FallbackPeriodDays
}

// SemiMajorAU returns the mean orbital radius in AU, or FallbackSemiMajorAU
// for ids outside the catalog.
func SemiMajorAU(id ID) float64 {
	if a, ok := semiMajorAU[id]; ok {
		return a
	}
	return FallbackSemiMajorAU
}

// RGB splits a packed 0xRRGGBB color.
func RGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
