package gas

import "github.com/san-kum/gassim/internal/physics"

// Add appends p if there is room. A full system, a nil particle, an invalid
// radius or a particle already in the system is a no-op.
func (s *System) Add(p *physics.Particle) {
	if len(s.particles) >= s.maxParticles || !s.admissible(p) {
		return
	}
	s.particles = append(s.particles, p)
}

// AddAll appends the whole batch only if all of it fits and every particle
// would be accepted by Add. A particle listed twice rejects the batch.
func (s *System) AddAll(ps []*physics.Particle) {
	if len(s.particles)+len(ps) > s.maxParticles {
		return
	}
	batch := make(map[*physics.Particle]struct{}, len(ps))
	for _, p := range ps {
		if !s.admissible(p) {
			return
		}
		if _, dup := batch[p]; dup {
			return
		}
		batch[p] = struct{}{}
	}
	s.particles = append(s.particles, ps...)
}

// admissible reports whether p can join the system: non-nil, a positive
// finite radius, and not owned by the system already.
func (s *System) admissible(p *physics.Particle) bool {
	if p == nil || !physics.ValidRadius(p.Radius) {
		return false
	}
	for _, q := range s.particles {
		if q == p {
			return false
		}
	}
	return true
}

// Reset replaces the population with min(n, max) fresh particles.
func (s *System) Reset(n int) {
	if n < 0 {
		n = 0
	}
	if n > s.maxParticles {
		n = s.maxParticles
	}
	for i := range s.particles {
		s.particles[i] = nil
	}
	s.particles = s.particles[:0]
	for i := 0; i < n; i++ {
		s.particles = append(s.particles, s.spawn())
	}
}

// RemoveParticles drops up to n particles from the front of the collection.
func (s *System) RemoveParticles(n int) {
	if n <= 0 {
		return
	}
	if n > len(s.particles) {
		n = len(s.particles)
	}
	remaining := copy(s.particles, s.particles[n:])
	for i := remaining; i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = s.particles[:remaining]
}

// SetNumberOfParticles grows or shrinks the population to exactly n.
// Requests above capacity or below zero are ignored.
func (s *System) SetNumberOfParticles(n int) {
	if n < 0 || n > s.maxParticles {
		return
	}
	if n < len(s.particles) {
		s.RemoveParticles(len(s.particles) - n)
	}
	for len(s.particles) < n {
		s.Add(s.spawn())
	}
}
