package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
)

const (
	DefaultDt       = 0.001
	DefaultStopTime = 100.0
	DefaultDrive    = string(coil.DriveVoltage)
)

type Config struct {
	Preset        string           `yaml:"preset,omitempty"`
	Dt            float64          `yaml:"dt"`
	StopTime      float64          `yaml:"stop_time"`
	ValidateState bool             `yaml:"validate_state"`
	Coil          CoilConfig       `yaml:"coil"`
	Circuit       CircuitConfig    `yaml:"circuit"`
	Projectile    ProjectileConfig `yaml:"projectile"`
}

type CoilConfig struct {
	Mu0    float64 `yaml:"mu0"`
	Turns  float64 `yaml:"turns"`
	Length float64 `yaml:"length"`
	Radius float64 `yaml:"radius"`
}

type CircuitConfig struct {
	Voltage     float64 `yaml:"voltage"`
	Capacitance float64 `yaml:"capacitance"`
	Resistance  float64 `yaml:"resistance"`
	Drive       string  `yaml:"drive"`
}

type ProjectileConfig struct {
	Magnetization float64 `yaml:"magnetization"`
	Volume        float64 `yaml:"volume"`
	Mass          float64 `yaml:"mass"`
}

// DefaultConfig is the reference run: 100 s at 1 ms steps.
func DefaultConfig() *Config {
	ref := coil.Reference()
	return FromParams(ref, dynamo.DefaultConfig())
}

// FromParams builds a Config from model parameters and a run configuration.
func FromParams(p coil.Params, run dynamo.Config) *Config {
	drive := string(p.Drive)
	if drive == "" {
		drive = DefaultDrive
	}
	return &Config{
		Dt:            run.Dt,
		StopTime:      run.StopTime,
		ValidateState: run.ValidateState,
		Coil: CoilConfig{
			Mu0:    p.Mu0,
			Turns:  p.Turns,
			Length: p.Length,
			Radius: p.Radius,
		},
		Circuit: CircuitConfig{
			Voltage:     p.Voltage,
			Capacitance: p.Capacitance,
			Resistance:  p.Resistance,
			Drive:       drive,
		},
		Projectile: ProjectileConfig{
			Magnetization: p.Magnetization,
			Volume:        p.Volume,
			Mass:          p.Mass,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// reference values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) Params() coil.Params {
	return coil.Params{
		Mu0:           c.Coil.Mu0,
		Turns:         c.Coil.Turns,
		Length:        c.Coil.Length,
		Radius:        c.Coil.Radius,
		Voltage:       c.Circuit.Voltage,
		Capacitance:   c.Circuit.Capacitance,
		Resistance:    c.Circuit.Resistance,
		Magnetization: c.Projectile.Magnetization,
		Volume:        c.Projectile.Volume,
		Mass:          c.Projectile.Mass,
		Drive:         coil.Drive(c.Circuit.Drive),
	}
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		StopTime:      c.StopTime,
		ValidateState: c.ValidateState,
	}
}

// Validate applies both the parameter and the run checks.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return c.SimConfig().Validate()
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// GetParams lists every tunable value by name, model parameters plus dt and
// stop_time.
func (c *Config) GetParams() map[string]float64 {
	params := c.Params().GetParams()
	params["dt"] = c.Dt
	params["stop_time"] = c.StopTime
	return params
}

func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "dt":
		c.Dt = value
		return nil
	case "stop_time":
		c.StopTime = value
		return nil
	}

	p := c.Params()
	if err := p.SetParam(name, value); err != nil {
		return err
	}
	c.Coil = CoilConfig{Mu0: p.Mu0, Turns: p.Turns, Length: p.Length, Radius: p.Radius}
	c.Circuit.Voltage = p.Voltage
	c.Circuit.Capacitance = p.Capacitance
	c.Circuit.Resistance = p.Resistance
	c.Projectile = ProjectileConfig{Magnetization: p.Magnetization, Volume: p.Volume, Mass: p.Mass}
	return nil
}

// Name is the preset name, or "custom".
func (c *Config) Name() string {
	if c.Preset == "" {
		return "custom"
	}
	return c.Preset
}
