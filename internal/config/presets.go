package config

import "sort"

var Presets = map[string]*Config{
	"reference": withPreset("reference", func(c *Config) {}),
	"short": withPreset("short", func(c *Config) {
		c.StopTime = 0.05
	}),
	"fine": withPreset("fine", func(c *Config) {
		c.Dt = 1e-5
		c.StopTime = 0.05
	}),
	"high_voltage": withPreset("high_voltage", func(c *Config) {
		c.Circuit.Voltage = 50
		c.StopTime = 0.05
	}),
	"long_coil": withPreset("long_coil", func(c *Config) {
		c.Coil.Length = 0.1
		c.Coil.Turns = 1000
		c.StopTime = 0.1
	}),
	"ohmic": withPreset("ohmic", func(c *Config) {
		c.Circuit.Drive = "ohmic"
		c.StopTime = 0.05
	}),
}

func withPreset(name string, mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Preset = name
	mutate(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
