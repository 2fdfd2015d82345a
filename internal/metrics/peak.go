package metrics

import (
	"math"

	"github.com/san-kum/coilsim/internal/dynamo"
)

// Peak tracks the largest value of one sample field.
type Peak struct {
	name    string
	field   func(dynamo.Sample) float64
	abs     bool
	max     float64
	samples int
}

func NewPeak(name string, field func(dynamo.Sample) float64, abs bool) *Peak {
	return &Peak{name: name, field: field, abs: abs}
}

func NewPeakVelocity() *Peak {
	return NewPeak("peak_velocity", func(s dynamo.Sample) float64 { return s.Velocity }, false)
}

func NewPeakCurrent() *Peak {
	return NewPeak("peak_current", func(s dynamo.Sample) float64 { return s.Current }, true)
}

func NewMaxAcceleration() *Peak {
	return NewPeak("max_acceleration", func(s dynamo.Sample) float64 { return s.Acceleration }, true)
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(s dynamo.Sample) {
	v := p.field(s)
	if p.abs {
		v = math.Abs(v)
	}
	if p.samples == 0 || v > p.max {
		p.max = v
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}
