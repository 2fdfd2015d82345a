// Package export renders stored runs as standalone SVG plots.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/coilsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// Series picks the plotted quantity out of a sample.
type Series struct {
	Name  string
	Unit  string
	Value func(dynamo.Sample) float64
}

var (
	Position     = Series{"position", "m", func(s dynamo.Sample) float64 { return s.Position }}
	Velocity     = Series{"velocity", "m/s", func(s dynamo.Sample) float64 { return s.Velocity }}
	Acceleration = Series{"acceleration", "m/s^2", func(s dynamo.Sample) float64 { return s.Acceleration }}
	Current      = Series{"current", "A", func(s dynamo.Sample) float64 { return s.Current }}
)

func SeriesByName(name string) (Series, error) {
	for _, s := range []Series{Position, Velocity, Acceleration, Current} {
		if s.Name == name {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("export: unknown series %q", name)
}

type Options struct {
	Width, Height int
	Stroke        string
	// Marks are drawn as dashed horizontal lines, e.g. the coil faces on a
	// position plot.
	Marks []float64
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 400, Stroke: "#00ccff"}
}

// SamplesToSVG plots series against sample time.
func SamplesToSVG(w io.Writer, samples []dynamo.Sample, series Series, opts Options) error {
	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{X: s.Time, Y: series.Value(s)}
	}
	svg := TrajectoryToSVG(points, opts, fmt.Sprintf("%s (%s) vs time (s)", series.Name, series.Unit))
	if svg == "" {
		return fmt.Errorf("export: need at least 2 samples, got %d", len(samples))
	}
	_, err := io.WriteString(w, svg)
	return err
}

// TrajectoryToSVG draws points as one path scaled to the view box with 10%
// padding. It returns "" for fewer than two points.
func TrajectoryToSVG(points []Point, opts Options, title string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	for _, m := range opts.Marks {
		minY, maxY = min(minY, m), max(maxY, m)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)
	px := func(x float64) float64 { return (x - minX) / rangeX * width }
	py := func(y float64) float64 { return height - (y-minY)/rangeY*height }

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	if title != "" {
		fmt.Fprintf(&sb, `<text x="10" y="20" fill="#888899" font-family="monospace" font-size="14">%s</text>
`, title)
	}

	for _, m := range opts.Marks {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="6,4"/>
`, py(m), opts.Width, py(m))
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.Stroke)
	for i, p := range points {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px(p.X), py(p.Y))
	}
	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
