package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/export"
	"github.com/san-kum/coilsim/internal/report"
	"github.com/san-kum/coilsim/internal/storage"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			runs, err := backend.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTOP\tDT\tDRIVE\tSTEPS\tEXIT V")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%gs\t%gs\t%s\t%d\t%.4f\n",
					run.ID,
					run.Preset,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.StopTime,
					run.Dt,
					run.Drive,
					run.Steps,
					run.Metrics["exit_velocity"],
				)
			}
			return w.Flush()
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRun(args[0], false, func(meta *storage.RunMetadata, _ []dynamo.Sample) error {
				out := cmd.OutOrStdout()
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "id\t%s\n", meta.ID)
				fmt.Fprintf(w, "preset\t%s\n", meta.Preset)
				fmt.Fprintf(w, "time\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(w, "dt\t%g\n", meta.Dt)
				fmt.Fprintf(w, "stop_time\t%g\n", meta.StopTime)
				fmt.Fprintf(w, "drive\t%s\n", meta.Drive)
				fmt.Fprintf(w, "steps\t%d\n", meta.Steps)
				if err := w.Flush(); err != nil {
					return err
				}

				fmt.Fprintln(out, "\nparameters")
				if err := printMetrics(out, meta.Params); err != nil {
					return err
				}
				fmt.Fprintln(out, "\nmetrics")
				return printMetrics(out, meta.Metrics)
			})
		},
	}
}

func (a *app) plotCmd() *cobra.Command {
	var height, width int

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRun(args[0], true, func(meta *storage.RunMetadata, samples []dynamo.Sample) error {
				if len(samples) == 0 {
					return fmt.Errorf("no data to plot")
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "run: %s\n", meta.ID)
				fmt.Fprintf(out, "preset: %s\n", meta.Preset)
				fmt.Fprintf(out, "samples: %d\n\n", len(samples))

				for _, series := range []export.Series{export.Position, export.Velocity, export.Acceleration, export.Current} {
					data := make([]float64, len(samples))
					for i, s := range samples {
						data[i] = series.Value(s)
					}
					graph := asciigraph.Plot(data,
						asciigraph.Height(height),
						asciigraph.Width(width),
						asciigraph.Caption(fmt.Sprintf("%s (%s)", series.Name, series.Unit)),
					)
					fmt.Fprintln(out, graph)
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&height, "height", 10, "graph height")
	cmd.Flags().IntVar(&width, "width", 80, "graph width")
	return cmd
}

func (a *app) exportJSONCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with all samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRun(args[0], true, func(meta *storage.RunMetadata, samples []dynamo.Sample) error {
				return writeOutput(cmd, output, func(w io.Writer) error {
					return storage.ExportJSON(w, *meta, samples)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) exportCSVCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the samples of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRun(args[0], true, func(_ *storage.RunMetadata, samples []dynamo.Sample) error {
				return writeOutput(cmd, output, func(w io.Writer) error {
					sink := report.NewCSV(w)
					for _, s := range samples {
						if err := sink.Write(s); err != nil {
							return err
						}
					}
					return sink.Flush()
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) exportSVGCmd() *cobra.Command {
	var (
		output string
		series string
		opts   = export.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := export.SeriesByName(series)
			if err != nil {
				return err
			}

			return a.withRun(args[0], true, func(meta *storage.RunMetadata, samples []dynamo.Sample) error {
				o := opts
				if s.Name == export.Position.Name {
					if l, ok := meta.Params["length"]; ok {
						o.Marks = []float64{-l / 2, l / 2}
					}
				}
				return writeOutput(cmd, output, func(w io.Writer) error {
					return export.SamplesToSVG(w, samples, s, o)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&series, "series", "position", "plotted quantity (position|velocity|acceleration|current)")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "image width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "image height")
	cmd.Flags().StringVar(&opts.Stroke, "stroke", opts.Stroke, "line color")
	return cmd
}

// withRun loads a stored run, with its samples when withSamples is set.
func (a *app) withRun(id string, withSamples bool, fn func(*storage.RunMetadata, []dynamo.Sample) error) error {
	backend, err := a.openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	meta, err := backend.Load(id)
	if err != nil {
		return err
	}

	var samples []dynamo.Sample
	if withSamples {
		if samples, err = backend.LoadSamples(id); err != nil {
			return err
		}
	}
	return fn(meta, samples)
}

func writeOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", path)
	return nil
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
