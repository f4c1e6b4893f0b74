package physics

import (
	"fmt"
	"math"
	"sort"
)

// IsCollidingOnAxis reports whether a body at pos moving at vel would leave
// [radius, extent-radius] on its next step.
func IsCollidingOnAxis(pos, vel, radius, extent float64) bool {
	next := pos + vel
	return next > extent-radius || next < radius
}

// IsHorizontalColliding checks the left and right walls of a container of the given width.
func IsHorizontalColliding(p *Particle, width float64) bool {
	return IsCollidingOnAxis(p.Pos.X, p.Vel.X, p.Radius, width)
}

// IsVerticalColliding checks the top and bottom walls of a container of the given height.
func IsVerticalColliding(p *Particle, height float64) bool {
	return IsCollidingOnAxis(p.Pos.Y, p.Vel.Y, p.Radius, height)
}

// ResolveBoundary reflects the velocity on each axis whose wall the particle
// is about to cross. The position is left as is, so a fast particle can sit
// past the wall for one tick.
func ResolveBoundary(p *Particle, width, height float64) {
	if IsHorizontalColliding(p, width) {
		p.Vel.X = -p.Vel.X
	}
	if IsVerticalColliding(p, height) {
		p.Vel.Y = -p.Vel.Y
	}
}

// IsColliding reports whether the two disks touch or overlap at their current positions.
func IsColliding(a, b *Particle) bool {
	return Distance(a.Pos, b.Pos) <= a.Radius+b.Radius
}

// Tangent returns the unit vector perpendicular to the line from a to b.
func Tangent(a, b *Particle) Vec2 {
	d := b.Pos.Sub(a.Pos)
	return Vec2{-d.Y, d.X}.Normalize()
}

// separating reports whether a resolver must leave the pair alone: either the
// relative velocity already points along the tangent, or the centers are not
// closing along the normal.
func separating(a, b *Particle) bool {
	rel := a.Vel.Sub(b.Vel)
	if rel.Dot(Tangent(a, b)) > 0 {
		return true
	}
	// Update visits each particle of a pair in turn; without this check the
	// second visit to a still-overlapping pair undoes the first exchange.
	return rel.Dot(b.Pos.Sub(a.Pos)) <= 0
}

// Resolver updates the velocities of two colliding particles.
type Resolver func(a, b *Particle)

// ResolveExchange swaps the normal component of the relative velocity between
// the two particles. Exact only when both particles have the same mass.
func ResolveExchange(a, b *Particle) {
	if separating(a, b) {
		return
	}
	tangent := Tangent(a, b)
	rel := a.Vel.Sub(b.Vel)
	along := rel.Dot(tangent)
	normal := rel.Sub(tangent.Scale(along))

	a.Vel = a.Vel.Sub(normal)
	b.Vel = b.Vel.Add(normal)
}

// ResolveElastic rotates both velocities into the collision frame, applies the
// one-dimensional elastic collision along the normal using Mass, and rotates
// back. Conserves momentum and kinetic energy for any pair of masses.
func ResolveElastic(a, b *Particle) {
	if separating(a, b) {
		return
	}
	d := b.Pos.Sub(a.Pos)
	angle := -math.Atan2(d.Y, d.X)

	m1, m2 := a.Mass(), b.Mass()
	u1 := a.Vel.Rotate(angle)
	u2 := b.Vel.Rotate(angle)

	v1 := Vec2{(u1.X*(m1-m2) + 2*m2*u2.X) / (m1 + m2), u1.Y}
	v2 := Vec2{(u2.X*(m2-m1) + 2*m1*u1.X) / (m1 + m2), u2.Y}

	a.Vel = v1.Rotate(-angle)
	b.Vel = v2.Rotate(-angle)
}

var resolvers = map[string]Resolver{
	"elastic":  ResolveElastic,
	"exchange": ResolveExchange,
}

// ResolverByName looks up "elastic" or "exchange".
func ResolverByName(name string) (Resolver, error) {
	r, ok := resolvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResolver, name)
	}
	return r, nil
}

func ResolverNames() []string {
	names := make([]string, 0, len(resolvers))
	for name := range resolvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
