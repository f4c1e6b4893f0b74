package metrics

import (
	"math"

	"github.com/san-kum/gassim/internal/sim"
)

// Momentum reports the magnitude of the most recent total momentum.
type Momentum struct {
	name    string
	current float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(s sim.Snapshot) {
	px, py := s.Momentum()
	m.current = math.Hypot(px, py)
}

func (m *Momentum) Value() float64 { return m.current }

func (m *Momentum) Reset() { m.current = 0 }

// MeanSpeed reports the average particle speed of the latest snapshot.
type MeanSpeed struct {
	name    string
	current float64
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(s sim.Snapshot) {
	if len(s.Particles) == 0 {
		m.current = 0
		return
	}
	sum := 0.0
	for _, p := range s.Particles {
		sum += math.Hypot(p.VX, p.VY)
	}
	m.current = sum / float64(len(s.Particles))
}

func (m *MeanSpeed) Value() float64 { return m.current }

func (m *MeanSpeed) Reset() { m.current = 0 }
