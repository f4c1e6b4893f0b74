package automation

import (
	"context"
	"fmt"
	"io"

	"github.com/san-kum/gassim/internal/config"
	"github.com/san-kum/gassim/internal/metrics"
)

// ParameterSweep runs one fresh system per value of a config parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Ticks     int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// SweepParams lists the config fields a sweep can vary.
var SweepParams = []string{"particles", "speed", "radius", "attraction", "range", "width", "height"}

func setSweepParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "particles":
		cfg.Particles = int(v)
	case "speed":
		cfg.Speed = v
	case "radius":
		cfg.Radius = v
	case "attraction":
		cfg.VanDerWaals.Attraction = v
	case "range":
		cfg.VanDerWaals.Range = v
	case "width":
		cfg.Width = v
	case "height":
		cfg.Height = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

// RunSweep executes the sweep. Progress lines go to out, which may be nil.
func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if out == nil {
		out = io.Discard
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *base
		if err := setSweepParam(&cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		ctrl, err := cfg.NewController()
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		for _, m := range metrics.Default() {
			ctrl.AddMetric(m)
		}

		result, err := ctrl.Run(ctx, sweep.Ticks)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
