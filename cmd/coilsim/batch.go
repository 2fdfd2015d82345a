package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/coilsim/internal/experiment"
	"github.com/san-kum/coilsim/internal/storage"
)

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := experiment.LoadScenario(args[0])
			if err != nil {
				return err
			}

			var backend storage.Backend
			for _, step := range sc.Steps {
				if step.Save {
					if backend, err = a.openStorage(); err != nil {
						return err
					}
					defer backend.Close()
					break
				}
			}

			results, runErr := experiment.RunScenario(cmd.Context(), sc, backend, a.log)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tSTEPS\tEXIT V\tEFFICIENCY\tRUN")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%s\n",
					r.Name, r.Steps, r.Metrics["exit_velocity"], r.Metrics["efficiency"], r.RunID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
}

func (a *app) monteCarloCmd() *cobra.Command {
	var (
		cf   configFlags
		tols []string
		mc   = experiment.MonteCarlo{Metric: "exit_velocity"}
	)

	cmd := &cobra.Command{
		Use:     "montecarlo [preset]",
		Short:   "spread of a metric under relative parameter tolerances",
		Example: `  coilsim montecarlo short --tol voltage=0.05 --tol mass=0.02 --trials 200`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(tols) == 0 {
				return fmt.Errorf("at least one --tol is required")
			}
			base, err := cf.build(cmd, args)
			if err != nil {
				return err
			}

			mc.Tolerances = make(map[string]float64, len(tols))
			for _, t := range tols {
				name, values, err := parseAssignment(t)
				if err != nil {
					return err
				}
				if len(values) != 1 {
					return fmt.Errorf("--tol %s: expected one value", name)
				}
				mc.Tolerances[name] = values[0]
			}

			res, err := mc.Run(cmd.Context(), base)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "metric\t%s\n", mc.Metric)
			fmt.Fprintf(w, "trials\t%d (%d failed)\n", len(res.Trials), res.Failed)
			fmt.Fprintf(w, "mean\t%.6g\n", res.Mean)
			fmt.Fprintf(w, "stddev\t%.6g\n", res.StdDev)
			fmt.Fprintf(w, "min\t%.6g\n", res.Min)
			fmt.Fprintf(w, "max\t%.6g\n", res.Max)
			fmt.Fprintf(w, "tolerances\t%s\n", strings.Join(tols, " "))
			return w.Flush()
		},
	}

	cf.register(cmd)
	cmd.Flags().StringArrayVar(&tols, "tol", nil, "relative tolerance, e.g. --tol voltage=0.05")
	cmd.Flags().IntVar(&mc.Trials, "trials", 100, "number of trials")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed (0 for time based)")
	cmd.Flags().StringVar(&mc.Metric, "metric", mc.Metric, "metric to summarize")
	cmd.Flags().IntVar(&mc.Workers, "workers", 0, "concurrent runs (0 for one per CPU)")
	return cmd
}
