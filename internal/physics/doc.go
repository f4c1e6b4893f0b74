// Package physics provides the kinematic primitives of the gas simulation.
//
// Everything here is stateless apart from the [Particle] record itself:
//
//   - [Vec2]: 2D value vector
//   - [Particle]: a rigid disk with position, velocity, radius and color
//   - [IsColliding], [ResolveElastic], [ResolveExchange]: particle-particle collisions
//   - [IsHorizontalColliding], [IsVerticalColliding], [ResolveBoundary]: wall reflection
//   - [GasModel], [ComputeVelocityAdjustment]: per-model velocity corrections
//
// # Collision tests
//
// Wall tests look one tick ahead (position + velocity) while particle-particle
// tests use the current centers. Neither resolver moves particles apart; only
// velocities change.
//
//	a := physics.DefaultParticle()
//	b := physics.DefaultParticle()
//	if physics.IsColliding(a, b) {
//	    physics.ResolveElastic(a, b)
//	}
package physics
