package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const blank = 0x2800

// Braille dot bits for a 2x4 cell:
// 1 4
// 2 5
// 3 6
// 7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells. Each cell holds 2x4 pixels and one color;
// the last pixel written to a cell decides its color.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]uint32
	text          [][]bool
}

func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]uint32, h),
		text:   make([][]bool, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]uint32, w)
		c.text[i] = make([]bool, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in braille dots.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at pixel (x, y). Out-of-range pixels and cells holding
// text are ignored.
func (c *Canvas) Set(x, y int, color uint32) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height || c.text[row][col] {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
	c.Colors[row][col] = color
}

func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = 0
			c.text[i][j] = false
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color uint32) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillCircle lights every dot within r of (cx, cy), and at least the centre.
func (c *Canvas) FillCircle(cx, cy int, r float64, color uint32) {
	w, h := c.PixelSize()
	if r < 0 || math.IsNaN(r) {
		return
	}
	// a circle wider than the diagonal covers every dot
	if r >= math.Hypot(float64(w), float64(h)) {
		if cx >= 0 && cx < w && cy >= 0 && cy < h {
			c.Fill(color)
			return
		}
	}
	c.Set(cx, cy, color)
	x0 := int(math.Max(0, math.Ceil(float64(cx)-r)))
	x1 := int(math.Min(float64(w-1), math.Floor(float64(cx)+r)))
	y0 := int(math.Max(0, math.Ceil(float64(cy)-r)))
	y1 := int(math.Min(float64(h-1), math.Floor(float64(cy)+r)))
	for y := y0; y <= y1; y++ {
		dy := float64(y - cy)
		for x := x0; x <= x1; x++ {
			dx := float64(x - cx)
			if dx*dx+dy*dy <= r*r {
				c.Set(x, y, color)
			}
		}
	}
}

// Fill lights every dot outside text cells.
func (c *Canvas) Fill(color uint32) {
	for row := range c.Grid {
		for col := range c.Grid[row] {
			if c.text[row][col] {
				continue
			}
			c.Grid[row][col] = blank | 0xff
			c.Colors[row][col] = color
		}
	}
}

// Text writes s starting at cell (col, row), replacing the braille there.
func (c *Canvas) Text(col, row int, s string, color uint32) {
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= c.Width {
			return
		}
		if col >= 0 {
			c.Grid[row][col] = r
			c.Colors[row][col] = color
			c.text[row][col] = true
		}
		col++
	}
}

// String renders the grid without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the grid with one lipgloss style per run of equally colored
// cells.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			if col := c.Colors[i][start]; col != 0 {
				run = lipgloss.NewStyle().Foreground(hexColor(col)).Render(run)
			}
			b.WriteString(run)
			start = j
		}
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hexColor(c uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", c&0xffffff))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
