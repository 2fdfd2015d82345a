package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/integrators"
	"github.com/san-kum/coilsim/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	metrics     map[string]func(coil.Params) dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		metrics:     make(map[string]func(coil.Params) dynamo.Metric),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	r.metrics["peak_velocity"] = func(coil.Params) dynamo.Metric { return metrics.NewPeakVelocity() }
	r.metrics["exit_velocity"] = func(p coil.Params) dynamo.Metric { return metrics.NewExitVelocity(p.ExitPosition()) }
	r.metrics["exit_time"] = func(p coil.Params) dynamo.Metric { return metrics.NewExitTime(p.ExitPosition()) }
	r.metrics["peak_current"] = func(coil.Params) dynamo.Metric { return metrics.NewPeakCurrent() }
	r.metrics["max_acceleration"] = func(coil.Params) dynamo.Metric { return metrics.NewMaxAcceleration() }
	r.metrics["efficiency"] = func(p coil.Params) dynamo.Metric {
		return metrics.NewEfficiency(p.KineticEnergy, p.StoredEnergy())
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string, p coil.Params) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) ListMetrics() []string {
	return sortedKeys(r.metrics)
}

// DefaultMetrics builds every registered metric for p.
func (r *Registry) DefaultMetrics(p coil.Params) []dynamo.Metric {
	names := r.ListMetrics()
	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name](p))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
