// Package export writes positions and orbit paths to CSV, JSON and SVG.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/position"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one heliocentric ecliptic position in AU.
type Sample struct {
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Z        float64   `json:"z"`
	Distance float64   `json:"distance"`
}

func newSample(id catalog.ID, at time.Time, p r3.Vec) Sample {
	return Sample{Body: id.String(), At: at.UTC(), X: p.X, Y: p.Y, Z: p.Z, Distance: r3.Norm(p)}
}

// Positions samples every id at one instant.
func Positions(p *position.Provider, at time.Time, ids []catalog.ID) []Sample {
	out := make([]Sample, 0, len(ids))
	for _, id := range ids {
		out = append(out, newSample(id, at, p.HeliocentricPosition(id, at)))
	}
	return out
}

// PathSamples converts a scene-space path back into AU samples.
func PathSamples(path orbit.Path, scale float64) []Sample {
	if scale <= 0 {
		scale = position.AUScale
	}
	out := make([]Sample, len(path.Points))
	for i, pt := range path.Points {
		out[i] = newSample(path.Body, path.At(i), position.FromScene(pt, scale))
	}
	return out
}

var csvHeader = []string{"body", "time", "x_au", "y_au", "z_au", "distance_au"}

func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, s := range samples {
		rec := []string{s.Body, s.At.Format(time.RFC3339), f(s.X), f(s.Y), f(s.Z), f(s.Distance)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(samples)
}

// ToFile runs write against path, or stdout when path is empty or "-".
func ToFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
