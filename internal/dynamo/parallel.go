package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators concurrently on a bounded number of
// goroutines; results keep the input order.
type Ensemble struct {
	sims    []*Simulator
	workers int
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Add(s *Simulator) { e.sims = append(e.sims, s) }

func (e *Ensemble) Len() int { return len(e.sims) }

// SetWorkers caps how many simulators run at once. n <= 0 means GOMAXPROCS.
func (e *Ensemble) SetWorkers(n int) { e.workers = n }

func (e *Ensemble) Workers() int {
	if e.workers > 0 {
		return e.workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run collects every simulator. The first error in input order is returned,
// together with all results (failed runs hold their partial samples).
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results, errs := e.RunAll(ctx)
	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// RunAll is Run with one error slot per simulator.
func (e *Ensemble) RunAll(ctx context.Context) ([]*Result, []error) {
	return e.each(ctx, (*Simulator).Collect)
}

// Summarize is RunAll without retained samples. Each result carries only
// the metrics and the step count.
func (e *Ensemble) Summarize(ctx context.Context) ([]*Result, []error) {
	return e.each(ctx, (*Simulator).Summarize)
}

func (e *Ensemble) each(ctx context.Context, run func(*Simulator, context.Context) (*Result, error)) ([]*Result, []error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))

	var g errgroup.Group
	g.SetLimit(e.Workers())
	for i, s := range e.sims {
		g.Go(func() error {
			results[i], errs[i] = run(s, ctx)
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}
