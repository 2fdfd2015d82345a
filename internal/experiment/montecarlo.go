package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/dynamo"
)

// MonteCarlo perturbs the named parameters by a uniform relative tolerance
// and runs every trial in parallel.
type MonteCarlo struct {
	Tolerances map[string]float64
	Trials     int
	Seed       int64
	Metric     string
	Workers    int
}

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type MonteCarloResult struct {
	Trials []Trial
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Failed int
}

func (mc *MonteCarlo) Run(ctx context.Context, base *config.Config) (*MonteCarloResult, error) {
	if mc.Trials <= 0 {
		return nil, fmt.Errorf("montecarlo: trials must be positive, got %d", mc.Trials)
	}
	if _, err := NewRegistry().GetMetric(mc.Metric, base.Params()); err != nil {
		return nil, fmt.Errorf("montecarlo: %w", err)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	names := make([]string, 0, len(mc.Tolerances))
	for name := range mc.Tolerances {
		names = append(names, name)
	}
	sort.Strings(names)

	nominal := base.GetParams()
	trials := make([]Trial, mc.Trials)
	ens := dynamo.NewEnsemble()
	ens.SetWorkers(mc.Workers)
	slots := make([]int, 0, mc.Trials)

	for i := range trials {
		params := make(map[string]float64, len(names))
		for _, name := range names {
			v, ok := nominal[name]
			if !ok {
				return nil, fmt.Errorf("montecarlo: unknown parameter: %s", name)
			}
			params[name] = v * (1 + (rng.Float64()*2-1)*mc.Tolerances[name])
		}
		trials[i].Params = params

		cfg := base.Clone()
		if err := applyParams(cfg, params); err != nil {
			trials[i].Err = err
			continue
		}
		exp, err := New(cfg)
		if err != nil {
			trials[i].Err = err
			continue
		}
		ens.Add(exp.GetSimulator())
		slots = append(slots, i)
	}

	results, errs := ens.Summarize(ctx)
	for j, i := range slots {
		trials[i].Err = errs[j]
		if errs[j] == nil {
			trials[i].Value = results[j].Metrics[mc.Metric]
		}
	}

	return summarize(trials), ctx.Err()
}

func summarize(trials []Trial) *MonteCarloResult {
	res := &MonteCarloResult{Trials: trials, Min: math.Inf(1), Max: math.Inf(-1)}

	var sum, sumSq float64
	n := 0
	for _, t := range trials {
		if t.Err != nil {
			res.Failed++
			continue
		}
		n++
		sum += t.Value
		sumSq += t.Value * t.Value
		res.Min = min(res.Min, t.Value)
		res.Max = max(res.Max, t.Value)
	}

	if n == 0 {
		res.Min, res.Max = 0, 0
		return res
	}
	res.Mean = sum / float64(n)
	if n > 1 {
		res.StdDev = math.Sqrt(max(0, (sumSq-float64(n)*res.Mean*res.Mean)/float64(n-1)))
	}
	return res
}
