package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/gassim/internal/gas"
)

// DefaultInterval is the ~60 Hz animation cadence.
const DefaultInterval = 17 * time.Millisecond

var (
	ErrAlreadyRunning = errors.New("sim: controller already running")
	ErrInvalidTicks   = errors.New("sim: tick count must not be negative")
)

// ParticleState is a read-only copy of one particle for renderers.
type ParticleState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"r"`
	Color  string  `json:"color"`
}

// Snapshot is a copy of the system taken between ticks.
type Snapshot struct {
	Tick      int             `json:"tick"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Model     string          `json:"model"`
	Gas       gas.GasState    `json:"gas"`
	Particles []ParticleState `json:"particles"`
}

// Capture copies sys into a Snapshot for a width x height container.
func Capture(sys *gas.System, width, height float64) Snapshot {
	ps := sys.Particles()
	snap := Snapshot{
		Tick:      sys.Ticks(),
		Width:     width,
		Height:    height,
		Model:     sys.GasModel().String(),
		Gas:       sys.State(),
		Particles: make([]ParticleState, len(ps)),
	}
	for i, p := range ps {
		snap.Particles[i] = ParticleState{
			X: p.Pos.X, Y: p.Pos.Y,
			VX: p.Vel.X, VY: p.Vel.Y,
			Radius: p.Radius,
			Color:  p.Color.Hex(),
		}
	}
	return snap
}

func (s Snapshot) IsValid() bool {
	for _, p := range s.Particles {
		for _, v := range [...]float64{p.X, p.Y, p.VX, p.VY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// KineticEnergy sums ½·m·v² with mass = radius.
func (s Snapshot) KineticEnergy() float64 {
	e := 0.0
	for _, p := range s.Particles {
		e += 0.5 * p.Radius * (p.VX*p.VX + p.VY*p.VY)
	}
	return e
}

func (s Snapshot) Momentum() (px, py float64) {
	for _, p := range s.Particles {
		px += p.Radius * p.VX
		py += p.Radius * p.VY
	}
	return
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTick(s Snapshot) { f(s) }

type Config struct {
	Width         float64
	Height        float64
	Interval      time.Duration
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Width:         600,
		Height:        400,
		Interval:      DefaultInterval,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Result of a headless run. Rows are metric values sampled every
// Config.SampleEvery ticks, one column per metric.
type Result struct {
	Columns    []string
	Ticks      []int
	Rows       [][]float64
	Metrics    map[string]float64
	Final      Snapshot
	TicksTaken int
	Elapsed    time.Duration
	Errors     []error
}

type TickError struct {
	Tick    int
	Message string
}

func (e TickError) Error() string {
	return fmt.Sprintf("tick %d: %s", e.Tick, e.Message)
}
