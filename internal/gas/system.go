package gas

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/gassim/internal/physics"
)

// System is an ordered, capacity-bounded collection of particles in a box.
// Iteration order is insertion order and decides which pair is resolved first
// when a particle touches several neighbors in the same tick.
type System struct {
	particles    []*physics.Particle
	maxParticles int

	template    Template
	model       physics.GasModel
	interaction physics.InteractionParams
	resolve     physics.Resolver
	rng         *rand.Rand

	state GasState

	width, height float64
	hasBounds     bool
	ticks         int
}

func newSystem(opts []Option) (*System, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxParticles <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, cfg.maxParticles)
	}
	if !physics.ValidRadius(cfg.template.Radius) {
		return nil, fmt.Errorf("%w: template radius %v", ErrInvalidRadius, cfg.template.Radius)
	}
	if cfg.resolver == nil {
		cfg.resolver = physics.ResolveElastic
	}
	return &System{
		particles:    make([]*physics.Particle, 0, cfg.maxParticles),
		maxParticles: cfg.maxParticles,
		template:     cfg.template,
		model:        cfg.model,
		interaction:  cfg.interaction,
		resolve:      cfg.resolver,
		rng:          rand.New(rand.NewSource(cfg.seed)),
		state:        cfg.state,
	}, nil
}

// New creates a system holding min(n, max) fresh particles.
func New(n int, opts ...Option) (*System, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeCount, n)
	}
	s, err := newSystem(opts)
	if err != nil {
		return nil, err
	}
	s.Reset(n)
	return s, nil
}

// NewFromParticles creates a system that takes ownership of ps.
func NewFromParticles(ps []*physics.Particle, opts ...Option) (*System, error) {
	s, err := newSystem(opts)
	if err != nil {
		return nil, err
	}
	if len(ps) > s.maxParticles {
		return nil, fmt.Errorf("%w: %d > %d", ErrCapacity, len(ps), s.maxParticles)
	}
	seen := make(map[*physics.Particle]int, len(ps))
	for i, p := range ps {
		if p == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilParticle, i)
		}
		if !physics.ValidRadius(p.Radius) {
			return nil, fmt.Errorf("%w: particle %d has radius %v", ErrInvalidRadius, i, p.Radius)
		}
		if j, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: indices %d and %d", ErrDuplicateParticle, j, i)
		}
		seen[p] = i
	}
	s.particles = append(s.particles, ps...)
	return s, nil
}

// Update advances every particle by one tick inside a width x height box.
//
// For each particle in order: apply the gas model's velocity adjustment,
// resolve collisions against every other particle using live state, move by
// the velocity, then reflect off any wall the next step would cross.
func (s *System) Update(width, height float64) {
	for _, p := range s.particles {
		if s.model != physics.Ideal {
			p.Vel = p.Vel.Add(physics.ComputeVelocityAdjustment(s.model, p, s.particles, s.interaction))
		}

		for _, q := range s.particles {
			if q == p {
				continue
			}
			if physics.IsColliding(p, q) {
				s.resolve(p, q)
			}
		}

		p.Pos = p.Pos.Add(p.Vel)
		physics.ResolveBoundary(p, width, height)
	}

	s.width, s.height, s.hasBounds = width, height, true
	s.ticks++
}

// Scatter places every particle at a random position inside the box with a
// random heading at the template speed. Radii and colors are reset from the
// template.
func (s *System) Scatter(width, height float64) {
	s.width, s.height, s.hasBounds = width, height, true
	for _, p := range s.particles {
		p.Radius = s.templateRadius()
		p.Color = s.template.Color
		p.Vel = s.randomHeading()
		p.Pos = s.randomPosition(p.Radius)
	}
}

// Particles returns the live particle slice. The slice is reused by later
// population changes; copy it to keep it.
func (s *System) Particles() []*physics.Particle { return s.particles }

func (s *System) Len() int          { return len(s.particles) }
func (s *System) MaxParticles() int { return s.maxParticles }
func (s *System) Ticks() int        { return s.ticks }

// Bounds returns the last container size passed to Update or Scatter.
func (s *System) Bounds() (width, height float64, ok bool) {
	return s.width, s.height, s.hasBounds
}

func (s *System) GasModel() physics.GasModel     { return s.model }
func (s *System) SetGasModel(m physics.GasModel) { s.model = m }

func (s *System) Interaction() physics.InteractionParams     { return s.interaction }
func (s *System) SetInteraction(p physics.InteractionParams) { s.interaction = p }

func (s *System) SetResolver(r physics.Resolver) {
	if r != nil {
		s.resolve = r
	}
}

func (s *System) Template() Template { return s.template }

// KineticEnergy sums ½·m·v² over all particles, with mass = radius.
func (s *System) KineticEnergy() float64 {
	e := 0.0
	for _, p := range s.particles {
		e += 0.5 * p.Mass() * p.Vel.Dot(p.Vel)
	}
	return e
}

// Momentum sums m·v over all particles.
func (s *System) Momentum() physics.Vec2 {
	var m physics.Vec2
	for _, p := range s.particles {
		m = m.Add(p.Vel.Scale(p.Mass()))
	}
	return m
}

// spawn builds a fresh particle. Without known bounds it is the default
// particle shaped by the template; with bounds it is placed at random.
func (s *System) spawn() *physics.Particle {
	p := physics.DefaultParticle()
	p.Radius = s.template.Radius
	p.Color = s.template.Color
	p.Vel = physics.Vec2{X: s.template.Speed, Y: s.template.Speed}
	if !s.hasBounds {
		return p
	}
	p.Radius = s.templateRadius()
	p.Vel = s.randomHeading()
	p.Pos = s.randomPosition(p.Radius)
	return p
}

func (s *System) templateRadius() float64 {
	r := s.template.Radius
	if s.template.RadiusSpread > 0 {
		r += (s.rng.Float64()*2 - 1) * s.template.RadiusSpread
	}
	if r <= 0 {
		r = s.template.Radius
	}
	return r
}

func (s *System) randomHeading() physics.Vec2 {
	angle := s.rng.Float64() * 2 * math.Pi
	return physics.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(s.template.Speed)
}

func (s *System) randomPosition(radius float64) physics.Vec2 {
	return physics.Vec2{
		X: s.randomCoord(radius, s.width),
		Y: s.randomCoord(radius, s.height),
	}
}

func (s *System) randomCoord(radius, extent float64) float64 {
	span := extent - 2*radius
	if span <= 0 {
		return extent / 2
	}
	return radius + s.rng.Float64()*span
}
