package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunTrace(t *testing.T) {
	out, _, err := execute(t, "run", "--stop", "0.002", "--log-level", "disabled")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time: 0, pos: -0.02281753727642214, velo: 2.182462723577861, accel: 2182.4627235778607, I: 25.0", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "time: 0.001, "))
}

func TestRunEveryAndCSV(t *testing.T) {
	out, _, err := execute(t, "run", "short", "--every", "10", "--format", "csv", "--log-level", "disabled")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "time,position,velocity,acceleration,current,field,gradient,force", lines[0])
}

func TestRunQuiet(t *testing.T) {
	out, _, err := execute(t, "run", "short", "-q", "--log-level", "disabled")
	require.NoError(t, err)

	assert.Contains(t, out, "exit_velocity")
	assert.Contains(t, out, "peak_current")
	assert.NotContains(t, out, "time:")
}

func TestRunErrors(t *testing.T) {
	_, _, err := execute(t, "run", "nope")
	assert.ErrorContains(t, err, "unknown preset")

	_, _, err = execute(t, "run", "--set", "resistance=0", "--log-level", "disabled")
	assert.ErrorContains(t, err, "invalid configuration")

	_, _, err = execute(t, "run", "--format", "xml")
	assert.Error(t, err)
}

func TestSaveListShowExport(t *testing.T) {
	for _, store := range []string{"file", "sqlite"} {
		t.Run(store, func(t *testing.T) {
			data := t.TempDir()
			common := []string{"--data", data, "--store", store, "--log-level", "disabled"}

			_, stderr, err := execute(t, append([]string{"run", "short", "--save", "-q"}, common...)...)
			require.NoError(t, err)
			id := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(stderr), "saved run"))
			require.NotEmpty(t, id)

			out, _, err := execute(t, append([]string{"list"}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, id)

			out, _, err = execute(t, append([]string{"show", id}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "short")
			assert.Contains(t, out, "efficiency")

			out, _, err = execute(t, append([]string{"export-csv", id}, common...)...)
			require.NoError(t, err)
			assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 51)

			svg := filepath.Join(t.TempDir(), "run.svg")
			_, _, err = execute(t, append([]string{"export-svg", id, "-o", svg}, common...)...)
			require.NoError(t, err)
			svgData, err := os.ReadFile(svg)
			require.NoError(t, err)
			assert.Contains(t, string(svgData), "stroke-dasharray")

			out, _, err = execute(t, append([]string{"export-json", id}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, `"samples"`)

			out, _, err = execute(t, append([]string{"plot", id}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "velocity (m/s)")

			_, _, err = execute(t, append([]string{"show", "missing"}, common...)...)
			assert.ErrorContains(t, err, "run not found")
		})
	}
}

func TestStoreFromEnv(t *testing.T) {
	t.Setenv("COILSIM_STORE", "bogus")
	_, _, err := execute(t, "list", "--data", t.TempDir(), "--log-level", "disabled")
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestSweep(t *testing.T) {
	out, _, err := execute(t, "sweep", "short", "--param", "voltage=10,50", "--metric", "peak_velocity", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "best peak_velocity")
	assert.Contains(t, out, "voltage=50.0")

	_, _, err = execute(t, "sweep", "short")
	assert.Error(t, err)
}

func TestCompareDt(t *testing.T) {
	out, _, err := execute(t, "compare-dt", "short", "--dts", "0.001,0.0005", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "EXIT_VELOCITY")
	assert.Contains(t, out, "0.0005")
}

func TestPresets(t *testing.T) {
	out, _, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "high_voltage")

	out, _, err = execute(t, "presets", "ohmic")
	require.NoError(t, err)
	assert.Contains(t, out, "drive: ohmic")
}

func TestParseAssignment(t *testing.T) {
	name, values, err := parseAssignment("voltage = 10, 20,30")
	require.NoError(t, err)
	assert.Equal(t, "voltage", name)
	assert.Equal(t, []float64{10, 20, 30}, values)

	for _, bad := range []string{"voltage", "=1", "voltage=", "voltage=a"} {
		_, _, err := parseAssignment(bad)
		assert.Error(t, err, bad)
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: study
steps:
  - name: base
    preset: short
  - name: saved
    preset: short
    stop_time: 0.01
    save: true
`), 0644))

	out, _, err := execute(t, "batch", path, "--data", filepath.Join(dir, "runs"), "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "base")
	assert.Contains(t, out, "saved_")

	out, _, err = execute(t, "list", "--data", filepath.Join(dir, "runs"), "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")
}

func TestMonteCarloCmd(t *testing.T) {
	out, _, err := execute(t, "montecarlo", "short", "--tol", "voltage=0.05", "--trials", "4", "--seed", "7", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "4 (0 failed)")
	assert.Contains(t, out, "exit_velocity")

	_, _, err = execute(t, "montecarlo", "short")
	assert.Error(t, err)
}
