package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/dynamo"
)

// Sweep runs the cartesian product of parameter values, one simulator per
// combination, and ranks the runs by Metric.
type Sweep struct {
	Names    []string
	Ranges   [][]float64
	Metric   string
	Maximize bool
	// Workers caps concurrent runs; 0 means GOMAXPROCS.
	Workers int
	Log     zerolog.Logger
}

type SweepPoint struct {
	Params  map[string]float64
	Metrics map[string]float64
	Steps   int
	Err     error
}

type SweepResult struct {
	Points []SweepPoint
	// Best indexes Points; -1 when every run failed.
	Best int
}

func (r *SweepResult) BestPoint() (SweepPoint, bool) {
	if r.Best < 0 {
		return SweepPoint{}, false
	}
	return r.Points[r.Best], true
}

func NewSweep(names []string, ranges [][]float64, metric string) *Sweep {
	return &Sweep{Names: names, Ranges: ranges, Metric: metric, Log: zerolog.Nop()}
}

// Combinations lists every parameter assignment, the first name varying
// slowest.
func (s *Sweep) Combinations() []map[string]float64 {
	var out []map[string]float64
	s.combine(0, map[string]float64{}, &out)
	return out
}

func (s *Sweep) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(s.Names) {
		*out = append(*out, current)
		return
	}

	name := s.Names[depth]
	for _, val := range s.Ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		s.combine(depth+1, next, out)
	}
}

// Run builds every combination from base and executes them concurrently.
// A failing run is recorded on its point; Run itself only fails when the
// sweep is malformed.
func (s *Sweep) Run(ctx context.Context, base *config.Config) (*SweepResult, error) {
	if len(s.Names) == 0 || len(s.Names) != len(s.Ranges) {
		return nil, fmt.Errorf("sweep: %d names for %d ranges", len(s.Names), len(s.Ranges))
	}
	if _, err := NewRegistry().GetMetric(s.Metric, base.Params()); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	combos := s.Combinations()
	points := make([]SweepPoint, len(combos))
	ens := dynamo.NewEnsemble()
	ens.SetWorkers(s.Workers)
	slots := make([]int, 0, len(combos))

	for i, combo := range combos {
		points[i].Params = combo

		cfg := base.Clone()
		if err := applyParams(cfg, combo); err != nil {
			points[i].Err = err
			continue
		}

		exp, err := New(cfg)
		if err != nil {
			points[i].Err = err
			continue
		}
		ens.Add(exp.GetSimulator())
		slots = append(slots, i)
	}

	s.Log.Debug().Int("runs", ens.Len()).Str("metric", s.Metric).Msg("starting sweep")

	results, errs := ens.Summarize(ctx)
	for j, i := range slots {
		points[i].Err = errs[j]
		if results[j] != nil {
			points[i].Metrics = results[j].Metrics
			points[i].Steps = results[j].StepsTaken
		}
		if errs[j] != nil {
			s.Log.Warn().Err(errs[j]).Interface("params", combos[i]).Msg("sweep run failed")
		}
	}

	res := &SweepResult{Points: points, Best: s.best(points)}
	if bp, ok := res.BestPoint(); ok {
		s.Log.Info().Interface("params", bp.Params).Float64(s.Metric, bp.Metrics[s.Metric]).Msg("sweep complete")
	}
	return res, ctx.Err()
}

func (s *Sweep) best(points []SweepPoint) int {
	best := -1
	bestVal := math.Inf(1)
	if s.Maximize {
		bestVal = math.Inf(-1)
	}

	for i, p := range points {
		if p.Err != nil {
			continue
		}
		val, ok := p.Metrics[s.Metric]
		if !ok || math.IsNaN(val) {
			continue
		}
		if (s.Maximize && val > bestVal) || (!s.Maximize && val < bestVal) {
			best, bestVal = i, val
		}
	}
	return best
}

func applyParams(cfg *config.Config, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := cfg.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	cfg.Preset = ""
	return nil
}
