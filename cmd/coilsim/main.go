package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/logging"
)

// app carries the process-wide settings and logger into every command.
type app struct {
	settings *viper.Viper
	log      zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{settings: viper.New(), log: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:           "coilsim",
		Short:         "solenoid projectile simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".coilsim", "data directory")
	pf.String("store", "file", "run storage backend (file|sqlite)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error|disabled)")
	pf.String("settings", "", "settings file (default ./coilsim.yaml if present)")

	rootCmd.AddCommand(
		a.runCmd(),
		a.listCmd(),
		a.showCmd(),
		a.plotCmd(),
		a.exportJSONCmd(),
		a.exportCSVCmd(),
		a.exportSVGCmd(),
		a.presetsCmd(),
		a.sweepCmd(),
		a.compareDtCmd(),
		a.liveCmd(),
		a.batchCmd(),
		a.monteCarloCmd(),
	)

	return rootCmd
}

// setup resolves settings from flags, COILSIM_* environment variables and
// an optional settings file, in that order of precedence.
func (a *app) setup(cmd *cobra.Command) error {
	v := a.settings
	v.SetDefault("data", ".coilsim")
	v.SetDefault("store", "file")
	v.SetDefault("log-level", "warn")

	v.SetEnvPrefix("COILSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := v.GetString("settings"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("coilsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || v.GetString("settings") != "" {
			return fmt.Errorf("settings: %w", err)
		}
	}

	level := v.GetString("log-level")
	if w := cmd.ErrOrStderr(); w == os.Stderr {
		a.log = logging.Stderr(level)
	} else {
		a.log = logging.New(w, level, false)
	}
	a.log.Debug().Str("data", v.GetString("data")).Str("store", v.GetString("store")).Msg("settings loaded")
	return nil
}

// configFlags selects and overrides the run configuration.
type configFlags struct {
	file  string
	dt    float64
	stop  float64
	drive string
	set   []string
}

func (f *configFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "config", "", "run config file (yaml)")
	fs.Float64Var(&f.dt, "dt", config.DefaultDt, "timestep (s)")
	fs.Float64Var(&f.stop, "stop", config.DefaultStopTime, "stop time (s)")
	fs.StringVar(&f.drive, "drive", config.DefaultDrive, "current law (voltage|ohmic)")
	fs.StringArrayVar(&f.set, "set", nil, "override a parameter, e.g. --set voltage=30")
}

// build starts from the named preset, the config file or the reference
// configuration, then applies explicitly set flags.
func (f *configFlags) build(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) > 0 && f.file != "":
		return nil, fmt.Errorf("give either a preset or --config, not both")
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see 'coilsim presets')", args[0])
		}
	case f.file != "":
		loaded, err := config.Load(f.file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.DefaultConfig()
		cfg.Preset = "reference"
	}

	fs := cmd.Flags()
	if fs.Changed("dt") {
		cfg.Dt = f.dt
	}
	if fs.Changed("stop") {
		cfg.StopTime = f.stop
	}
	if fs.Changed("drive") {
		cfg.Circuit.Drive = f.drive
	}
	if len(f.set) > 0 {
		cfg.Preset = ""
	}
	for _, kv := range f.set {
		name, values, err := parseAssignment(kv)
		if err != nil {
			return nil, err
		}
		if len(values) != 1 {
			return nil, fmt.Errorf("--set %s: expected one value", name)
		}
		if err := cfg.SetParam(name, values[0]); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// parseAssignment splits "name=v1,v2,..." into the name and its values.
func parseAssignment(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(list) == "" {
		return "", nil, fmt.Errorf("expected name=value[,value...], got %q", s)
	}

	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func parseFloatList(s string) ([]float64, error) {
	_, values, err := parseAssignment("x=" + s)
	return values, err
}
