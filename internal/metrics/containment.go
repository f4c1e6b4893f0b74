package metrics

import "github.com/san-kum/gassim/internal/sim"

// Containment is the fraction of observed snapshots in which every particle
// center lay inside the container.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(s sim.Snapshot) {
	c.samples++
	for _, p := range s.Particles {
		if p.X < 0 || p.X > s.Width || p.Y < 0 || p.Y > s.Height {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// Default returns a fresh instance of every diagnostic, in column order.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewMomentum(),
		NewMeanSpeed(),
		NewEnergyDrift(),
		NewContainment(),
	}
}
