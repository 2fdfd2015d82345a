package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/coilsim/internal/experiment"
	"github.com/san-kum/coilsim/internal/viz"
)

func (a *app) liveCmd() *cobra.Command {
	var cf configFlags

	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cf.file == "" {
				args = []string{"short"}
			}
			cfg, err := cf.build(cmd, args)
			if err != nil {
				return err
			}

			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}
			sim := exp.GetSimulator()
			if err := sim.Validate(); err != nil {
				return err
			}
			return viz.Run(sim, exp.Params(), cfg.Name())
		},
	}

	cf.register(cmd)
	return cmd
}
