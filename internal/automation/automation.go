package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/gassim/internal/config"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/metrics"
	"github.com/san-kum/gassim/internal/physics"
	"github.com/san-kum/gassim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of changes applied to one running system.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Config      *config.Config `yaml:"config"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep applies its changes in field order, then runs Ticks ticks.
// Particles sets the population outright; Add and Remove adjust it.
type ScenarioStep struct {
	Label     string             `yaml:"label"`
	Width     float64            `yaml:"width"`
	Height    float64            `yaml:"height"`
	Particles *int               `yaml:"particles"`
	Add       int                `yaml:"add"`
	Remove    int                `yaml:"remove"`
	Model     string             `yaml:"model"`
	Set       map[string]float64 `yaml:"set"`
	Scatter   bool               `yaml:"scatter"`
	Ticks     int                `yaml:"ticks"`
}

type StepResult struct {
	Label     string
	Particles int
	Result    *sim.Result
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
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// BaseConfig resolves the starting configuration: an inline config wins over
// a preset, which wins over the defaults.
func (s *Scenario) BaseConfig() (*config.Config, error) {
	if s.Config != nil {
		return s.Config, nil
	}
	if s.Preset == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(s.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", s.Preset)
	}
	return cfg, nil
}

// RunScenario executes every step against a single controller. Progress lines
// go to out, which may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, out io.Writer) ([]StepResult, error) {
	if out == nil {
		out = io.Discard
	}

	cfg, err := scenario.BaseConfig()
	if err != nil {
		return nil, err
	}
	ctrl, err := cfg.NewController()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Default() {
		ctrl.AddMetric(m)
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		label := step.Label
		if label == "" {
			label = fmt.Sprintf("step %d", i+1)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), label)

		if err := applyStep(ctrl, step); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := ctrl.Run(ctx, step.Ticks)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		if len(result.Errors) > 0 {
			return results, fmt.Errorf("step %d: %w", i+1, result.Errors[0])
		}

		results = append(results, StepResult{
			Label:     label,
			Particles: len(result.Final.Particles),
			Result:    result,
		})
	}

	return results, nil
}

func applyStep(ctrl *sim.Controller, step ScenarioStep) error {
	if step.Add < 0 || step.Remove < 0 {
		return fmt.Errorf("add and remove must not be negative")
	}

	w, h := ctrl.Bounds()
	if step.Width > 0 {
		w = step.Width
	}
	if step.Height > 0 {
		h = step.Height
	}
	ctrl.SetBounds(w, h)

	var model physics.GasModel
	if step.Model != "" {
		m, err := physics.ParseGasModel(step.Model)
		if err != nil {
			return err
		}
		model = m
	}

	var applyErr error
	ctrl.Do(func(sys *gas.System) {
		if step.Particles != nil {
			n := *step.Particles
			if n < 0 || n > sys.MaxParticles() {
				applyErr = fmt.Errorf("particles %d outside [0, %d]", n, sys.MaxParticles())
				return
			}
			sys.SetNumberOfParticles(n)
		}
		for i := 0; i < step.Add; i++ {
			sys.SetNumberOfParticles(sys.Len() + 1)
		}
		sys.RemoveParticles(step.Remove)

		if step.Model != "" {
			sys.SetGasModel(model)
		}
		for name, v := range step.Set {
			if err := sys.SetParam(name, v); err != nil {
				applyErr = err
				return
			}
		}
		if step.Scatter {
			sys.Scatter(w, h)
		}
	})
	return applyErr
}
