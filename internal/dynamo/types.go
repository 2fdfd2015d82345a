package dynamo

import (
	"fmt"
	"math"
)

// State is the kinematic state of the projectile between steps.
type State struct {
	Time     float64
	Position float64
	Velocity float64
}

func (s State) IsValid() bool {
	return finite(s.Time) && finite(s.Position) && finite(s.Velocity)
}

func (s State) String() string {
	return fmt.Sprintf("t=%g z=%g v=%g", s.Time, s.Position, s.Velocity)
}

// Eval holds the quantities derived from (time, position) during one step.
// None of them persist across steps.
type Eval struct {
	Current      float64
	Field        float64
	Gradient     float64
	Force        float64
	Acceleration float64
}

func (e Eval) IsValid() bool {
	return finite(e.Current) && finite(e.Field) && finite(e.Gradient) &&
		finite(e.Force) && finite(e.Acceleration)
}

// Sample is what one step emits. Time is the pre-step time; Position and
// Velocity are the post-step values.
type Sample struct {
	Time         float64 `json:"time"`
	Position     float64 `json:"position"`
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	Current      float64 `json:"current"`
	Field        float64 `json:"field"`
	Gradient     float64 `json:"gradient"`
	Force        float64 `json:"force"`
}

// System is a driven body whose acceleration depends only on time and axial
// position.
type System interface {
	Evaluate(t, z float64) Eval
	EntryPosition() float64
	Validate() error
}

type Integrator interface {
	Step(sys System, x State, dt float64) (State, Eval)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a plain function to an Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	Dt            float64
	StopTime      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		StopTime:      100,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.StopTime < 0 || math.IsNaN(c.StopTime) || math.IsInf(c.StopTime, 0) {
		return fmt.Errorf("%w: stop time must be non-negative, got %g", ErrInvalidConfig, c.StopTime)
	}
	return nil
}

// ExpectedSteps is ceil(StopTime/Dt), the length of a full run.
func (c Config) ExpectedSteps() int {
	if c.Dt <= 0 || c.StopTime <= 0 {
		return 0
	}
	return int(math.Ceil(c.StopTime / c.Dt))
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last sample, or the zero Sample for an empty run.
func (r *Result) Final() Sample {
	if r == nil || len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
