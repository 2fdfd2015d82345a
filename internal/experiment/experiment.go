package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/report"
	"github.com/san-kum/coilsim/internal/storage"
)

// Experiment is one configured run: the coil model, the simulator with the
// default metrics attached, and any report sinks.
type Experiment struct {
	cfg       *config.Config
	params    coil.Params
	simulator *dynamo.Simulator
	sinks     []*report.SinkObserver
	log       zerolog.Logger
}

type Option func(*Experiment)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Experiment) { e.log = log }
}

// WithSink streams every sample to sink while the run progresses.
func WithSink(sink report.Sink) Option {
	return func(e *Experiment) { e.AddSink(sink) }
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	return NewWithRegistry(NewRegistry(), "euler", cfg, opts...)
}

func NewWithRegistry(reg *Registry, integrator string, cfg *config.Config, opts ...Option) (*Experiment, error) {
	integ, err := reg.GetIntegrator(integrator)
	if err != nil {
		return nil, err
	}

	params := cfg.Params()
	e := &Experiment{
		cfg:       cfg,
		params:    params,
		simulator: dynamo.New(params, integ, cfg.SimConfig()),
		log:       zerolog.Nop(),
	}
	for _, m := range reg.DefaultMetrics(params) {
		e.simulator.AddMetric(m)
	}
	for _, opt := range opts {
		opt(e)
	}

	e.log = e.log.With().Str("preset", cfg.Name()).Logger()
	return e, nil
}

func (e *Experiment) AddSink(sink report.Sink) {
	obs := report.Observer(sink)
	e.sinks = append(e.sinks, obs)
	e.simulator.AddObserver(obs)
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Params() coil.Params    { return e.params }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

// Run executes the experiment and keeps every sample.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	start := e.logStart()

	result, err := e.simulator.Collect(ctx)
	if flushErr := e.flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		e.log.Error().Err(err).Int("steps", result.StepsTaken).Msg("run failed")
		return result, err
	}

	e.logDone(start, result.StepsTaken, result.Metrics)
	return result, nil
}

// Stream executes the experiment without retaining samples; only the sinks
// and metrics see them. The returned result has no Samples.
func (e *Experiment) Stream(ctx context.Context) (*dynamo.Result, error) {
	start := e.logStart()

	result, err := e.simulator.Summarize(ctx)
	if flushErr := e.flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		e.log.Error().Err(err).Int("steps", result.StepsTaken).Msg("run failed")
		return result, err
	}

	e.logDone(start, result.StepsTaken, result.Metrics)
	return result, nil
}

func (e *Experiment) logStart() time.Time {
	e.log.Debug().
		Float64("dt", e.cfg.Dt).
		Float64("stop_time", e.cfg.StopTime).
		Str("drive", string(e.params.Drive)).
		Int("expected_steps", e.cfg.SimConfig().ExpectedSteps()).
		Msg("starting run")
	return time.Now()
}

func (e *Experiment) logDone(start time.Time, steps int, m map[string]float64) {
	ev := e.log.Info().Int("steps", steps).Dur("elapsed", time.Since(start))
	for _, name := range sortedKeys(m) {
		ev = ev.Float64(name, m[name])
	}
	ev.Msg("run complete")
}

func (e *Experiment) flush() error {
	for _, s := range e.sinks {
		if err := s.Flush(); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return nil
}

// Metadata describes a finished run for storage.
func (e *Experiment) Metadata(result *dynamo.Result) storage.RunMetadata {
	meta := storage.RunMetadata{
		Preset:   e.cfg.Name(),
		Dt:       e.cfg.Dt,
		StopTime: e.cfg.StopTime,
		Drive:    string(e.params.Drive),
		Params:   e.params.GetParams(),
	}
	if result != nil {
		meta.Metrics = result.Metrics
		meta.Steps = result.StepsTaken
	}
	return meta
}

// Save stores a finished run and returns its id.
func (e *Experiment) Save(backend storage.Backend, result *dynamo.Result) (string, error) {
	id, err := backend.Save(e.Metadata(result), result.Samples)
	if err != nil {
		return "", err
	}
	e.log.Info().Str("run_id", id).Msg("run saved")
	return id, nil
}
