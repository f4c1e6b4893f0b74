package physics

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRadius indicates a radius that is not a positive finite number.
	ErrInvalidRadius = errors.New("physics: radius must be positive and finite")

	// ErrUnknownResolver indicates a resolver name with no registered implementation.
	ErrUnknownResolver = errors.New("physics: unknown collision resolver")

	// ErrUnknownGasModel indicates a gas model name that cannot be parsed.
	ErrUnknownGasModel = errors.New("physics: unknown gas model")
)

const (
	DefaultRadius = 5.0
	DefaultX      = 10.0
	DefaultY      = 10.0
	DefaultSpeed  = 1.0
)

// RGB is a display color. The engine never reads it.
type RGB struct {
	R, G, B uint8
}

var (
	Red   = RGB{255, 0, 0}
	Black = RGB{0, 0, 0}
)

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Particle is one gas molecule modeled as a rigid disk. Pos is the disk center.
type Particle struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Color  RGB
}

// ValidRadius reports whether r is a positive finite radius.
func ValidRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 1)
}

// NewParticle creates a particle, rejecting non-positive or non-finite radii.
func NewParticle(pos, vel Vec2, radius float64) (*Particle, error) {
	if !ValidRadius(radius) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	return &Particle{Pos: pos, Vel: vel, Radius: radius, Color: Red}, nil
}

// DefaultParticle returns a radius-5 red particle centered at (10,10) moving at (1,1).
func DefaultParticle() *Particle {
	return &Particle{
		Pos:    Vec2{DefaultX, DefaultY},
		Vel:    Vec2{DefaultSpeed, DefaultSpeed},
		Radius: DefaultRadius,
		Color:  Red,
	}
}

// Mass uses the radius as a proxy: bigger disks are heavier.
func (p *Particle) Mass() float64 { return p.Radius }

func (p *Particle) Speed() float64 { return p.Vel.Len() }

func (p *Particle) Clone() *Particle {
	c := *p
	return &c
}

func (p *Particle) String() string {
	return fmt.Sprintf("'Particle'{'radius':%g, 'xPos':%g, 'yPos':%g}", p.Radius, p.Pos.X, p.Pos.Y)
}
