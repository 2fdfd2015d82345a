package dynamo

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

type Simulator struct {
	sys        System
	integrator Integrator
	cfg        Config
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator, cfg Config) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		cfg:        cfg,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() Config { return s.cfg }
func (s *Simulator) System() System { return s.sys }

// Validate checks the model parameters and the run configuration.
func (s *Simulator) Validate() error {
	if s.sys == nil || s.integrator == nil {
		return fmt.Errorf("%w: simulator needs a system and an integrator", ErrInvalidConfig)
	}
	if err := s.sys.Validate(); err != nil {
		return err
	}
	return s.cfg.Validate()
}

// InitialState places the projectile at rest on the entry face at t=0.
func (s *Simulator) InitialState() State {
	return State{Time: 0, Position: s.sys.EntryPosition(), Velocity: 0}
}

// Step advances x by one timestep. The sample carries the pre-step time and
// the post-step position and velocity. On error x is returned unchanged.
func (s *Simulator) Step(x State) (Sample, State, error) {
	next, ev := s.integrator.Step(s.sys, x, s.cfg.Dt)

	if s.cfg.ValidateState {
		if !ev.IsValid() {
			return Sample{}, x, &SimulationError{Time: x.Time, State: x, Wrapped: ErrSingularField}
		}
		if !next.IsValid() {
			return Sample{}, x, &SimulationError{Time: x.Time, State: x, Wrapped: ErrInvalidState}
		}
	}

	return Sample{
		Time:         x.Time,
		Position:     next.Position,
		Velocity:     next.Velocity,
		Acceleration: ev.Acceleration,
		Current:      ev.Current,
		Field:        ev.Field,
		Gradient:     ev.Gradient,
		Force:        ev.Force,
	}, next, nil
}

// Run returns the lazy sample sequence of one run, starting from a fresh
// initial state on every call. Configuration errors are yielded before any
// sample; a step error or a canceled context ends the sequence.
func (s *Simulator) Run(ctx context.Context) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		if err := s.Validate(); err != nil {
			yield(Sample{}, err)
			return
		}

		for _, m := range s.metrics {
			m.Reset()
		}

		x := s.InitialState()
		steps := s.cfg.ExpectedSteps()
		for i := 0; i < steps; i++ {
			select {
			case <-ctx.Done():
				yield(Sample{}, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err()))
				return
			default:
			}

			sample, next, err := s.Step(x)
			if err != nil {
				var simErr *SimulationError
				if errors.As(err, &simErr) {
					simErr.Step = i
				}
				yield(Sample{}, err)
				return
			}

			for _, m := range s.metrics {
				m.Observe(sample)
			}
			for _, obs := range s.observers {
				obs.OnSample(sample)
			}

			if !yield(sample, nil) {
				return
			}
			x = next
		}
	}
}

// Collect runs to completion and keeps every sample. On error the samples
// produced so far are returned alongside it.
func (s *Simulator) Collect(ctx context.Context) (*Result, error) {
	result := &Result{
		Samples: make([]Sample, 0, s.cfg.ExpectedSteps()),
		Metrics: make(map[string]float64),
	}

	for sample, err := range s.Run(ctx) {
		if err != nil {
			return result, err
		}
		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Summarize runs to completion without retaining samples. Observers still
// see every sample; metrics are filled only when the run succeeds.
func (s *Simulator) Summarize(ctx context.Context) (*Result, error) {
	result := &Result{}
	err := s.RunWithCallback(ctx, func(Sample) bool {
		result.StepsTaken++
		return true
	})
	if err != nil {
		return result, err
	}
	result.Metrics = s.Metrics()
	return result, nil
}

// RunWithCallback streams samples to callback without retaining them.
// Returning false from callback stops the run early without error.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(Sample) bool) error {
	for sample, err := range s.Run(ctx) {
		if err != nil {
			return err
		}
		if !callback(sample) {
			return nil
		}
	}
	return nil
}

// Metrics reports the current value of every attached metric.
func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
