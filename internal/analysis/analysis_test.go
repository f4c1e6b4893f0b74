package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/gassim/internal/sim"
)

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*float64(i)/8)
	}

	if got := DominantPeriod(data, 1); math.Abs(got-8) > 1e-9 {
		t.Errorf("period = %v, want 8", got)
	}
	if got := DominantPeriod(data, 10); math.Abs(got-80) > 1e-9 {
		t.Errorf("period with spacing 10 = %v, want 80", got)
	}
}

func TestDominantPeriodFlat(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"empty", nil},
		{"single", []float64{1}},
		{"constant", []float64{3, 3, 3, 3, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantPeriod(tt.data, 1); got != 0 {
				t.Errorf("period = %v, want 0", got)
			}
		})
	}
}

func TestSpeedHistogram(t *testing.T) {
	ps := []sim.ParticleState{
		{VX: 1}, {VY: 2}, {VX: 3, VY: 4}, {VX: -0.5}, {VY: -1.5}, {VX: 0.1, VY: 0.1},
	}
	h := SpeedHistogram(ps, 5)

	if h.Max != 5 {
		t.Errorf("max = %v, want 5", h.Max)
	}

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	if total != len(ps) {
		t.Errorf("counted %d particles, want %d", total, len(ps))
	}
	if h.Counts[4] != 1 {
		t.Errorf("fastest bin = %d, want 1", h.Counts[4])
	}

	expected := 0.0
	for _, e := range h.Expected {
		expected += e
	}
	if math.Abs(expected-float64(len(ps))) > 1e-9 {
		t.Errorf("expected counts sum to %v, want %d", expected, len(ps))
	}

	if d := h.Deviation(); d < 0 || d > 1 {
		t.Errorf("deviation %v outside [0, 1]", d)
	}
	if c := h.BinCenter(0); c != 0.5 {
		t.Errorf("bin center = %v, want 0.5", c)
	}
}

func TestSpeedHistogramEdgeCases(t *testing.T) {
	empty := SpeedHistogram(nil, 4)
	if empty.Total != 0 || empty.Deviation() != 0 {
		t.Errorf("empty histogram = %+v", empty)
	}

	still := SpeedHistogram([]sim.ParticleState{{}, {}}, 0)
	if len(still.Counts) != 1 || still.Counts[0] != 2 {
		t.Errorf("resting particles counts = %v, want [2]", still.Counts)
	}
}

func TestVelocityPortrait(t *testing.T) {
	ps := []sim.ParticleState{{VX: 1, VY: 1}, {VX: -1, VY: -1}, {VX: 0.5, VY: -0.2}}
	out := VelocityPortrait(ps, 20, 10)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d rows, want 10", len(lines))
	}
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points, got %d", strings.Count(out, "•"))
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Error("expected both axes to be drawn")
	}

	if VelocityPortrait(nil, 20, 10) != "" {
		t.Error("expected empty portrait for no particles")
	}
}
