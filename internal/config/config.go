package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
	"github.com/san-kum/gassim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles   = 60
	DefaultWidth       = 600.0
	DefaultHeight      = 400.0
	DefaultRadius      = 5.0
	DefaultSpeed       = 2.0
	DefaultTickRate    = 60
	DefaultTicks       = 600
	DefaultSampleEvery = 10
	DefaultAttraction  = 0.05
	DefaultRange       = 3.0
)

type Config struct {
	Particles     int             `yaml:"particles"`
	MaxParticles  int             `yaml:"max_particles"`
	Radius        float64         `yaml:"radius"`
	RadiusSpread  float64         `yaml:"radius_spread"`
	Speed         float64         `yaml:"speed"`
	Width         float64         `yaml:"width"`
	Height        float64         `yaml:"height"`
	GasModel      string          `yaml:"gas_model"`
	Resolver      string          `yaml:"resolver"`
	Seed          int64           `yaml:"seed"`
	TickRate      int             `yaml:"tick_rate"`
	Ticks         int             `yaml:"ticks"`
	SampleEvery   int             `yaml:"sample_every"`
	ValidateState bool            `yaml:"validate_state"`
	Gas           gas.GasState    `yaml:"gas"`
	VanDerWaals   VanDerWaalsConf `yaml:"van_der_waals"`
}

type VanDerWaalsConf struct {
	Attraction float64 `yaml:"attraction"`
	Range      float64 `yaml:"range"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:     DefaultParticles,
		MaxParticles:  gas.DefaultMaxParticles,
		Radius:        DefaultRadius,
		Speed:         DefaultSpeed,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		GasModel:      physics.Ideal.String(),
		Resolver:      "elastic",
		Seed:          1,
		TickRate:      DefaultTickRate,
		Ticks:         DefaultTicks,
		SampleEvery:   DefaultSampleEvery,
		ValidateState: true,
		Gas:           gas.DefaultGasState(),
		VanDerWaals: VanDerWaalsConf{
			Attraction: DefaultAttraction,
			Range:      DefaultRange,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

func (c *Config) Validate() error {
	if c.Particles < 0 {
		return fmt.Errorf("particles must not be negative, got %d", c.Particles)
	}
	if c.MaxParticles <= 0 {
		return fmt.Errorf("max_particles must be positive, got %d", c.MaxParticles)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %f", c.Radius)
	}
	if c.RadiusSpread < 0 || c.RadiusSpread >= c.Radius {
		return fmt.Errorf("radius_spread must be in [0, radius), got %f", c.RadiusSpread)
	}
	if c.Width <= 2*c.Radius || c.Height <= 2*c.Radius {
		return fmt.Errorf("container %gx%g is too small for radius %g", c.Width, c.Height, c.Radius)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", c.Ticks)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d", c.SampleEvery)
	}
	if _, err := physics.ParseGasModel(c.GasModel); err != nil {
		return err
	}
	if _, err := physics.ResolverByName(c.Resolver); err != nil {
		return err
	}
	return nil
}

// SystemOptions translates the config into gas.System options.
func (c *Config) SystemOptions() ([]gas.Option, error) {
	model, err := physics.ParseGasModel(c.GasModel)
	if err != nil {
		return nil, err
	}
	resolver, err := physics.ResolverByName(c.Resolver)
	if err != nil {
		return nil, err
	}
	return []gas.Option{
		gas.WithMaxParticles(c.MaxParticles),
		gas.WithTemplate(gas.Template{
			Radius:       c.Radius,
			RadiusSpread: c.RadiusSpread,
			Speed:        c.Speed,
			Color:        physics.Red,
		}),
		gas.WithGasModel(model),
		gas.WithInteraction(physics.InteractionParams{
			Attraction: c.VanDerWaals.Attraction,
			Range:      c.VanDerWaals.Range,
		}),
		gas.WithResolver(resolver),
		gas.WithSeed(c.Seed),
		gas.WithGasState(c.Gas),
	}, nil
}

// NewSystem validates the config and builds a scattered system from it.
func (c *Config) NewSystem() (*gas.System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.SystemOptions()
	if err != nil {
		return nil, err
	}
	sys, err := gas.New(c.Particles, opts...)
	if err != nil {
		return nil, err
	}
	sys.Scatter(c.Width, c.Height)
	return sys, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Width:         c.Width,
		Height:        c.Height,
		Interval:      time.Second / time.Duration(c.TickRate),
		SampleEvery:   c.SampleEvery,
		ValidateState: c.ValidateState,
	}
}

// NewController builds the system and wraps it in a controller sized to the
// configured container.
func (c *Config) NewController() (*sim.Controller, error) {
	sys, err := c.NewSystem()
	if err != nil {
		return nil, err
	}
	return sim.New(sys, c.SimConfig()), nil
}
