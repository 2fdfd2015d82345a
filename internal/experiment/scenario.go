package experiment

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (reference when empty) and applies its
// overrides. Zero Dt and StopTime keep the preset values.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Dt       float64            `yaml:"dt"`
	StopTime float64            `yaml:"stop_time"`
	Drive    string             `yaml:"drive"`
	Params   map[string]float64 `yaml:"params"`
	Save     bool               `yaml:"save"`
}

type StepResult struct {
	Name    string
	RunID   string
	Steps   int
	Metrics map[string]float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run configuration of a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	preset := s.Preset
	if preset == "" {
		preset = "reference"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}

	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.StopTime != 0 {
		cfg.StopTime = s.StopTime
	}
	if s.Drive != "" {
		cfg.Circuit.Drive = s.Drive
	}
	if len(s.Params) > 0 {
		if err := applyParams(cfg, s.Params); err != nil {
			return nil, err
		}
	}
	if s.Name != "" {
		cfg.Preset = s.Name
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Steps marked save are stored in backend, which may be nil otherwise.
func RunScenario(ctx context.Context, scenario *Scenario, backend storage.Backend, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		log.Info().Str("scenario", scenario.Name).Str("step", name).Msgf("running step %d/%d", i+1, len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := New(cfg, WithLogger(log))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{Name: name}
		var result *dynamo.Result
		if step.Save {
			if backend == nil {
				return results, fmt.Errorf("step %d: save requested without storage", i+1)
			}
			if result, err = exp.Run(ctx); err == nil {
				sr.RunID, err = exp.Save(backend, result)
			}
		} else {
			result, err = exp.Stream(ctx)
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr.Metrics, sr.Steps = result.Metrics, result.StepsTaken
		results = append(results, sr)
	}

	return results, nil
}
