package sim

import (
	"math"
	"testing"

	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
)

func TestCapture(t *testing.T) {
	a, _ := physics.NewParticle(physics.Vec2{X: 10, Y: 20}, physics.Vec2{X: 1, Y: -2}, 4)
	sys, err := gas.NewFromParticles([]*physics.Particle{a})
	if err != nil {
		t.Fatalf("NewFromParticles: %v", err)
	}
	snap := Capture(sys, 200, 100)

	if snap.Width != 200 || snap.Height != 100 {
		t.Errorf("bounds not captured: %vx%v", snap.Width, snap.Height)
	}
	if snap.Model != "ideal" {
		t.Errorf("expected ideal model, got %q", snap.Model)
	}
	p := snap.Particles[0]
	if p.X != 10 || p.Y != 20 || p.VX != 1 || p.VY != -2 || p.Radius != 4 {
		t.Errorf("unexpected particle state %+v", p)
	}
	if p.Color != "#ff0000" {
		t.Errorf("expected red particle, got %s", p.Color)
	}

	// snapshot is a copy
	a.Pos.X = 99
	if snap.Particles[0].X != 10 {
		t.Error("snapshot aliases live particle")
	}
}

func TestSnapshotIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state ParticleState
		valid bool
	}{
		{"finite", ParticleState{X: 1, Y: 2, VX: 3, VY: 4}, true},
		{"nan position", ParticleState{X: math.NaN()}, false},
		{"inf velocity", ParticleState{VY: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{Particles: []ParticleState{tt.state}}
			if got := s.IsValid(); got != tt.valid {
				t.Errorf("expected %v, got %v", tt.valid, got)
			}
		})
	}
}

func TestSnapshotEnergyMomentum(t *testing.T) {
	s := Snapshot{Particles: []ParticleState{
		{VX: 1, Radius: 2},
		{VX: -1, VY: 2, Radius: 1},
	}}

	// 0.5*2*1 + 0.5*1*5
	if ke := s.KineticEnergy(); math.Abs(ke-3.5) > 1e-12 {
		t.Errorf("expected KE 3.5, got %v", ke)
	}
	px, py := s.Momentum()
	if px != 1 || py != 2 {
		t.Errorf("expected momentum (1,2), got (%v,%v)", px, py)
	}
}

func TestTickError(t *testing.T) {
	err := TickError{Tick: 4, Message: "boom"}
	if err.Error() != "tick 4: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
