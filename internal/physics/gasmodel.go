package physics

import (
	"fmt"
	"strings"
)

// GasModel selects how particles interact beyond hard-disk collisions.
type GasModel int

const (
	Ideal GasModel = iota
	VanDerWaals
)

func (m GasModel) String() string {
	switch m {
	case Ideal:
		return "ideal"
	case VanDerWaals:
		return "van_der_waals"
	default:
		return fmt.Sprintf("GasModel(%d)", int(m))
	}
}

// ParseGasModel accepts "ideal", "van_der_waals" and the shorthand "vdw".
func ParseGasModel(s string) (GasModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ideal", "":
		return Ideal, nil
	case "van_der_waals", "vanderwaals", "vdw":
		return VanDerWaals, nil
	}
	return Ideal, fmt.Errorf("%w: %q", ErrUnknownGasModel, s)
}

// InteractionParams tunes the Van der Waals attraction.
type InteractionParams struct {
	// Attraction scales the 1/d² pull between neighbors.
	Attraction float64
	// Range is the cutoff as a multiple of the summed radii.
	Range float64
}

func DefaultInteractionParams() InteractionParams {
	return InteractionParams{Attraction: 0.05, Range: 3}
}

// VelocityDelta is added to a particle's velocity before it collides and moves.
type VelocityDelta = Vec2

// ComputeVelocityAdjustment returns the per-tick velocity change that the gas
// model applies to p. Neighbors at zero distance, p included, are skipped.
// Ideal gases have no intermolecular forces and always get the zero delta.
func ComputeVelocityAdjustment(model GasModel, p *Particle, neighbors []*Particle, params InteractionParams) VelocityDelta {
	if model != VanDerWaals || params.Attraction == 0 {
		return VelocityDelta{}
	}

	var delta Vec2
	for _, q := range neighbors {
		d := q.Pos.Sub(p.Pos)
		dist := d.Len()
		if dist == 0 {
			continue
		}
		contact := p.Radius + q.Radius
		if dist <= contact || dist > params.Range*contact {
			continue
		}
		pull := params.Attraction * q.Mass() / (dist * dist)
		delta = delta.Add(d.Scale(pull / dist))
	}
	return delta
}
