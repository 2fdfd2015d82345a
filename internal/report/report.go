// Package report renders simulation samples as they are produced.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/coilsim/internal/dynamo"
)

// Sink consumes samples one at a time.
type Sink interface {
	Write(s dynamo.Sample) error
	Flush() error
}

// Text writes the reference trace, one line per sample. The clock starts as
// the integer 0, so the first time prints without a decimal point:
//
//	time: 0, pos: -0.02281753727642214, velo: 2.182462723577861, accel: 2182.4627235778607, I: 25.0
type Text struct {
	w *bufio.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: bufio.NewWriter(w)}
}

func (t *Text) Write(s dynamo.Sample) error {
	_, err := fmt.Fprintf(t.w, "time: %s, pos: %s, velo: %s, accel: %s, I: %s\n",
		formatTime(s.Time), FormatFloat(s.Position), FormatFloat(s.Velocity),
		FormatFloat(s.Acceleration), FormatFloat(s.Current))
	return err
}

func (t *Text) Flush() error { return t.w.Flush() }

func formatTime(t float64) string {
	if t == 0 {
		return "0"
	}
	return FormatFloat(t)
}

// FormatFloat gives the shortest representation that parses back to x,
// always with a decimal point or exponent so integers read as reals.
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}

	if x != 0 {
		e := strconv.FormatFloat(x, 'e', -1, 64)
		exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
		if exp < -4 || exp >= 16 {
			return e
		}
	}

	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

var CSVHeader = []string{
	"time", "position", "velocity", "acceleration",
	"current", "field", "gradient", "force",
}

// CSV writes every sample field in shortest round-trip form.
type CSV struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (c *CSV) Write(s dynamo.Sample) error {
	if !c.wroteHeader {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(Record(s))
}

func (c *CSV) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Record is the CSV row of a sample, in CSVHeader order.
func Record(s dynamo.Sample) []string {
	vals := []float64{s.Time, s.Position, s.Velocity, s.Acceleration, s.Current, s.Field, s.Gradient, s.Force}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

// ParseRecord is the inverse of Record.
func ParseRecord(row []string) (dynamo.Sample, error) {
	if len(row) != len(CSVHeader) {
		return dynamo.Sample{}, fmt.Errorf("report: expected %d columns, got %d", len(CSVHeader), len(row))
	}
	vals := make([]float64, len(row))
	for i, f := range row {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return dynamo.Sample{}, fmt.Errorf("report: column %s: %w", CSVHeader[i], err)
		}
		vals[i] = v
	}
	return dynamo.Sample{
		Time:         vals[0],
		Position:     vals[1],
		Velocity:     vals[2],
		Acceleration: vals[3],
		Current:      vals[4],
		Field:        vals[5],
		Gradient:     vals[6],
		Force:        vals[7],
	}, nil
}

type every struct {
	n    int
	seen int
	sink Sink
}

// Every forwards the first sample and each n-th after it. n <= 1 forwards all.
func Every(n int, sink Sink) Sink {
	if n <= 1 {
		return sink
	}
	return &every{n: n, sink: sink}
}

func (e *every) Write(s dynamo.Sample) error {
	i := e.seen
	e.seen++
	if i%e.n != 0 {
		return nil
	}
	return e.sink.Write(s)
}

func (e *every) Flush() error { return e.sink.Flush() }

// Multi fans every sample out to all sinks.
type Multi []Sink

func (m Multi) Write(s dynamo.Sample) error {
	for _, sink := range m {
		if err := sink.Write(s); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Flush() error {
	var first error
	for _, sink := range m {
		if err := sink.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SinkObserver adapts a Sink to a dynamo.Observer. Writes stop after the
// first error, which Err reports.
type SinkObserver struct {
	sink Sink
	err  error
}

func Observer(sink Sink) *SinkObserver {
	return &SinkObserver{sink: sink}
}

func (o *SinkObserver) OnSample(s dynamo.Sample) {
	if o.err != nil {
		return
	}
	o.err = o.sink.Write(s)
}

func (o *SinkObserver) Err() error { return o.err }

// Flush flushes the sink and returns the first write or flush error.
func (o *SinkObserver) Flush() error {
	if err := o.sink.Flush(); err != nil && o.err == nil {
		o.err = err
	}
	return o.err
}
