package gas

import (
	"fmt"
	"strings"
)

// String dumps system-level state as a bracketed key/value block.
func (s *System) String() string {
	return fmt.Sprintf("'ParticleSystem'{\n\t'totalParticles':%d,\n\t'volume':%g,\n\t'temperature':%g,\n\t'pressure':%g,\n\t'moles':%g,\n\t'MAX_PARTICLES':%d\n}",
		len(s.particles), s.state.Volume, s.state.Temperature, s.state.Pressure, s.state.Moles, s.maxParticles)
}

// StringifyParticles dumps one line per particle.
func (s *System) StringifyParticles() string {
	lines := make([]string, len(s.particles))
	for i, p := range s.particles {
		lines[i] = p.String()
	}
	return "'ParticleData'{\n\t" + strings.Join(lines, ",\n\t") + "\n}"
}
