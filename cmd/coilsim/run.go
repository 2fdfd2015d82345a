package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/coilsim/internal/experiment"
	"github.com/san-kum/coilsim/internal/report"
)

func (a *app) runCmd() *cobra.Command {
	var (
		cf     configFlags
		every  int
		quiet  bool
		save   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and print the trace",
		Long: `Run a simulation and print one line per sample:

  time: <t>, pos: <z>, velo: <v>, accel: <a>, I: <i>

Without a preset or --config the reference configuration is used
(1 ms steps for 100 s).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cf.build(cmd, args)
			if err != nil {
				return err
			}

			opts := []experiment.Option{experiment.WithLogger(a.log)}
			out := cmd.OutOrStdout()
			if !quiet {
				var sink report.Sink
				switch format {
				case "text":
					sink = report.NewText(out)
				case "csv":
					sink = report.NewCSV(out)
				default:
					return fmt.Errorf("unknown format %q (text|csv)", format)
				}
				opts = append(opts, experiment.WithSink(report.Every(every, sink)))
			}

			exp, err := experiment.New(cfg, opts...)
			if err != nil {
				return err
			}

			if !save {
				result, err := exp.Stream(cmd.Context())
				if err != nil {
					return err
				}
				if quiet {
					return printMetrics(out, result.Metrics)
				}
				return nil
			}

			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			id, err := exp.Save(backend, result)
			if err != nil {
				return err
			}

			if quiet {
				if err := printMetrics(out, result.Metrics); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", id)
			return nil
		},
	}

	cf.register(cmd)
	cmd.Flags().IntVar(&every, "every", 1, "print every n-th sample")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final metrics")
	cmd.Flags().BoolVar(&save, "save", false, "store the run")
	cmd.Flags().StringVar(&format, "format", "text", "trace format (text|csv)")
	return cmd
}

func printMetrics(w io.Writer, m map[string]float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range sortedNames(m) {
		fmt.Fprintf(tw, "%s\t%s\n", name, report.FormatFloat(m[name]))
	}
	return tw.Flush()
}
