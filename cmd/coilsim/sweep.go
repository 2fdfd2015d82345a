package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/experiment"
	"github.com/san-kum/coilsim/internal/report"
)

func (a *app) sweepCmd() *cobra.Command {
	var (
		cf       configFlags
		params   []string
		metric   string
		minimize bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a parameter grid in parallel and rank by a metric",
		Example: `  coilsim sweep short --param voltage=10,25,50
  coilsim sweep --param turns=250,500,1000 --param length=0.03,0.05 --metric efficiency`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(params) == 0 {
				return fmt.Errorf("at least one --param is required")
			}
			base, err := cf.build(cmd, args)
			if err != nil {
				return err
			}

			s := experiment.NewSweep(nil, nil, metric)
			s.Maximize = !minimize
			s.Workers = workers
			s.Log = a.log
			for _, p := range params {
				name, values, err := parseAssignment(p)
				if err != nil {
					return err
				}
				s.Names = append(s.Names, name)
				s.Ranges = append(s.Ranges, values)
			}

			res, err := s.Run(cmd.Context(), base)
			if err != nil {
				return err
			}
			return printSweep(cmd, s, res)
		},
	}

	cf.register(cmd)
	cmd.Flags().StringArrayVar(&params, "param", nil, "swept parameter, e.g. --param voltage=10,20,30")
	cmd.Flags().StringVar(&metric, "metric", "exit_velocity", "metric to rank by")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "rank lowest first")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 for one per CPU)")
	return cmd
}

func (a *app) compareDtCmd() *cobra.Command {
	var (
		cf      configFlags
		dts     string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "compare-dt [preset]",
		Short: "run the same configuration at several timesteps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cf.build(cmd, args)
			if err != nil {
				return err
			}
			values, err := parseFloatList(dts)
			if err != nil {
				return fmt.Errorf("--dts: %w", err)
			}

			s := experiment.NewSweep([]string{"dt"}, [][]float64{values}, "exit_velocity")
			s.Workers = workers
			s.Log = a.log
			res, err := s.Run(cmd.Context(), base)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s, stop %gs\n\n", base.Name(), base.StopTime)
			return printSweep(cmd, s, res)
		},
	}

	cf.register(cmd)
	cmd.Flags().StringVar(&dts, "dts", "0.001,0.0005,0.0001,0.00001", "comma separated timesteps")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 for one per CPU)")
	return cmd
}

var sweepColumns = []string{"exit_velocity", "exit_time", "peak_velocity", "efficiency"}

func printSweep(cmd *cobra.Command, s *experiment.Sweep, res *experiment.SweepResult) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := append(append([]string{}, s.Names...), "STEPS")
	for _, c := range sweepColumns {
		header = append(header, strings.ToUpper(c))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for i, p := range res.Points {
		row := make([]string, 0, len(header)+1)
		for _, name := range s.Names {
			row = append(row, report.FormatFloat(p.Params[name]))
		}
		if p.Err != nil {
			row = append(row, "-", "error: "+p.Err.Error())
		} else {
			row = append(row, fmt.Sprint(p.Steps))
			for _, c := range sweepColumns {
				row = append(row, fmt.Sprintf("%.6g", p.Metrics[c]))
			}
		}
		if i == res.Best {
			row[len(row)-1] += "  *"
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := res.BestPoint(); ok {
		fmt.Fprintf(out, "\nbest %s = %.6g at", s.Metric, best.Metrics[s.Metric])
		for _, name := range s.Names {
			fmt.Fprintf(out, " %s=%s", name, report.FormatFloat(best.Params[name]))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as a run config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				cfg := config.GetPreset(args[0])
				if cfg == nil {
					return fmt.Errorf("unknown preset %q", args[0])
				}
				return config.Write(out, cfg)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDT\tSTOP\tVOLTAGE\tTURNS\tLENGTH\tDRIVE")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%s\n",
					name, cfg.Dt, cfg.StopTime, cfg.Circuit.Voltage,
					cfg.Coil.Turns, cfg.Coil.Length, cfg.Circuit.Drive)
			}
			return w.Flush()
		},
	}
}
