package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/scene"
)

// OrbitsToSVG draws a top-down view of the given paths, looking down the
// scene's up axis with the sun at the centre. Paths are scaled together so
// their relative sizes survive.
func OrbitsToSVG(paths []orbit.Path, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	extent := 0.0
	for _, p := range paths {
		for _, pt := range p.Points {
			extent = math.Max(extent, math.Max(math.Abs(pt.X), math.Abs(pt.Z)))
		}
	}
	if extent == 0 {
		extent = 1
	}
	extent *= 1.1
	half := math.Min(float64(width), float64(height)) / 2
	cx, cy := float64(width)/2, float64(height)/2
	toScreen := func(x, z float64) (float64, float64) {
		return cx + x/extent*half, cy - z/extent*half
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, width, height, width, height, cx, cy, math.Max(2, scene.SunRadius/extent*half), hex(scene.SunColor)))

	for _, p := range paths {
		if len(p.Points) < 2 {
			continue
		}
		body, _ := catalog.Lookup(p.Body)
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, hex(body.OrbitColor)))
		for i, pt := range p.Points {
			x, y := toScreen(pt.X, pt.Z)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		x, y := toScreen(p.Points[0].X, p.Points[0].Z)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
<text x="%.1f" y="%.1f" fill="#ffffff" font-family="Arial, sans-serif" font-size="12">%s</text>
`, x, y, hex(body.Color), x+5, y-5, body.DisplayName))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func hex(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xffffff)
}
