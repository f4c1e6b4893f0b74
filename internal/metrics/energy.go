package metrics

import (
	"math"

	"github.com/san-kum/gassim/internal/sim"
)

// KineticEnergy reports the most recent total kinetic energy.
type KineticEnergy struct {
	name    string
	current float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(s sim.Snapshot) {
	k.current = s.KineticEnergy()
}

func (k *KineticEnergy) Value() float64 { return k.current }

func (k *KineticEnergy) Reset() { k.current = 0 }

// EnergyDrift tracks the largest relative departure from the first observed
// kinetic energy. Elastic collisions and wall reflections keep it at rounding
// level; the van der Waals model does not.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Snapshot) {
	energy := s.KineticEnergy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
