package config

import "sort"

// Presets are full configs; GetPreset returns a copy so callers can tweak it.
var Presets = map[string]*Config{
	"sparse": withDefaults(func(c *Config) {
		c.Particles = 20
		c.Speed = 1.5
	}),
	"dense": withDefaults(func(c *Config) {
		c.Particles = 250
		c.Radius = 4
		c.Speed = 1
	}),
	"mixed": withDefaults(func(c *Config) {
		c.Particles = 80
		c.Radius = 6
		c.RadiusSpread = 4
	}),
	"vdw": withDefaults(func(c *Config) {
		c.Particles = 120
		c.GasModel = "van_der_waals"
		c.Speed = 0.8
		c.VanDerWaals = VanDerWaalsConf{Attraction: 0.2, Range: 4}
	}),
	"fast": withDefaults(func(c *Config) {
		c.Particles = 60
		c.Speed = 8
	}),
}

func withDefaults(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
