package analysis

import (
	"math"

	"github.com/san-kum/gassim/internal/sim"
)

// Histogram bins particle speeds over [0, Max]. Expected holds the counts a
// 2D Maxwell-Boltzmann gas with the same mean squared speed would put in
// each bin.
type Histogram struct {
	Max      float64
	Counts   []int
	Expected []float64
	Total    int
}

func SpeedHistogram(ps []sim.ParticleState, bins int) *Histogram {
	if bins < 1 {
		bins = 1
	}
	h := &Histogram{
		Counts:   make([]int, bins),
		Expected: make([]float64, bins),
		Total:    len(ps),
	}
	if len(ps) == 0 {
		return h
	}

	speeds := make([]float64, len(ps))
	meanSq := 0.0
	for i, p := range ps {
		speeds[i] = math.Hypot(p.VX, p.VY)
		h.Max = max(h.Max, speeds[i])
		meanSq += speeds[i] * speeds[i]
	}
	meanSq /= float64(len(ps))
	if h.Max == 0 {
		h.Counts[0] = len(ps)
		h.Expected[0] = float64(len(ps))
		return h
	}

	width := h.Max / float64(bins)
	for _, v := range speeds {
		idx := min(int(v/width), bins-1)
		h.Counts[idx]++
	}

	// Rayleigh CDF with sigma^2 = <v^2>/2. The last bin absorbs the tail.
	cdf := func(v float64) float64 {
		return 1 - math.Exp(-v*v/meanSq)
	}
	n := float64(len(ps))
	for i := range h.Expected {
		lo := float64(i) * width
		hi := lo + width
		if i == bins-1 {
			h.Expected[i] = n * (1 - cdf(lo))
		} else {
			h.Expected[i] = n * (cdf(hi) - cdf(lo))
		}
	}
	return h
}

// BinCenter returns the speed at the middle of bin i.
func (h *Histogram) BinCenter(i int) float64 {
	width := h.Max / float64(len(h.Counts))
	return (float64(i) + 0.5) * width
}

// Deviation is the total variation distance between the observed and
// expected distributions, in [0, 1].
func (h *Histogram) Deviation() float64 {
	if h.Total == 0 {
		return 0
	}
	sum := 0.0
	for i, c := range h.Counts {
		sum += math.Abs(float64(c) - h.Expected[i])
	}
	return sum / (2 * float64(h.Total))
}
