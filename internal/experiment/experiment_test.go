package experiment

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/logging"
	"github.com/san-kum/coilsim/internal/report"
	"github.com/san-kum/coilsim/internal/storage"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.GetIntegrator("euler")
	require.NoError(t, err)
	_, err = reg.GetIntegrator("rk4")
	assert.Error(t, err)

	assert.Equal(t, []string{"efficiency", "exit_time", "exit_velocity", "max_acceleration", "peak_current", "peak_velocity"}, reg.ListMetrics())
	assert.Len(t, reg.DefaultMetrics(config.DefaultConfig().Params()), 6)
}

func TestRunShortPreset(t *testing.T) {
	exp, err := New(config.GetPreset("short"))
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, result.StepsTaken)
	assert.InDelta(t, 2182.4627235778607, result.Samples[0].Acceleration, 1e-9)
	assert.InDelta(t, 25.0, result.Metrics["peak_current"], 1e-12)
	assert.InDelta(t, 3.32887, result.Metrics["peak_velocity"], 1e-4)
	assert.InDelta(t, 3.32878, result.Metrics["exit_velocity"], 1e-4)
	assert.InDelta(t, 0.015, result.Metrics["exit_time"], 1e-9)
	assert.InDelta(t, 0.00806, result.Metrics["efficiency"], 1e-4)

	p := exp.Params()
	assert.InDelta(t, p.KineticEnergy(result.Final().Velocity)/p.StoredEnergy(), result.Metrics["efficiency"], 1e-15)
}

func TestRunWritesSinkAndLogs(t *testing.T) {
	cfg := config.GetPreset("short")
	cfg.StopTime = 0.01

	var trace, logs bytes.Buffer
	exp, err := New(cfg,
		WithSink(report.NewText(&trace)),
		WithLogger(logging.New(&logs, "info", false)),
	)
	require.NoError(t, err)

	_, err = exp.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "time: 0, pos: -0.02281753727642214, velo: 2.182462723577861, accel: 2182.4627235778607, I: 25.0", lines[0])

	assert.Contains(t, logs.String(), `"message":"run complete"`)
	assert.Contains(t, logs.String(), `"preset":"short"`)
	assert.Contains(t, logs.String(), `"steps":10`)
}

func TestStreamMatchesRun(t *testing.T) {
	cfg := config.GetPreset("short")

	a, err := New(cfg)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	b, err := New(cfg)
	require.NoError(t, err)
	streamed, err := b.Stream(context.Background())
	require.NoError(t, err)

	assert.Equal(t, result.Metrics, streamed.Metrics)
	assert.Equal(t, result.StepsTaken, streamed.StepsTaken)
	assert.Nil(t, streamed.Samples)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Circuit.Resistance = 0

	exp, err := New(cfg)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
	assert.Empty(t, result.Samples)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp, err := New(config.DefaultConfig())
	require.NoError(t, err)

	_, err = exp.Run(ctx)
	assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSave(t *testing.T) {
	backend := storage.New(t.TempDir())
	require.NoError(t, backend.Init())

	cfg := config.GetPreset("short")
	cfg.StopTime = 0.005
	exp, err := New(cfg)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	id, err := exp.Save(backend, result)
	require.NoError(t, err)

	meta, err := backend.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "short", meta.Preset)
	assert.Equal(t, "voltage", meta.Drive)
	assert.Equal(t, 5, meta.Steps)
	assert.Equal(t, 500.0, meta.Params["turns"])
	assert.Equal(t, result.Metrics["peak_velocity"], meta.Metrics["peak_velocity"])

	samples, err := backend.LoadSamples(id)
	require.NoError(t, err)
	assert.Equal(t, result.Samples, samples)
}

func TestSaveUnguardedSingularRun(t *testing.T) {
	backend := storage.New(t.TempDir())
	require.NoError(t, backend.Init())

	cfg := config.GetPreset("short")
	cfg.StopTime = 0.005
	cfg.Coil.Radius = 0
	cfg.ValidateState = false
	exp, err := New(cfg)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Samples, 5)
	require.True(t, math.IsNaN(result.Metrics["peak_velocity"]))

	id, err := exp.Save(backend, result)
	require.NoError(t, err)

	meta, err := backend.Load(id)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(meta.Metrics["peak_velocity"]))
	assert.Equal(t, 5, meta.Steps)

	samples, err := backend.LoadSamples(id)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	assert.True(t, math.IsNaN(samples[0].Acceleration))

	var buf bytes.Buffer
	require.NoError(t, storage.ExportJSON(&buf, *meta, samples))
	assert.Contains(t, buf.String(), `"NaN"`)
}
