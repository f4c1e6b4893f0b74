// Package analysis inspects stored runs.
//
//   - [SpeedHistogram]: speed distribution of a frame against the 2D
//     Maxwell-Boltzmann (Rayleigh) curve at the same mean energy
//   - [VelocityPortrait]: vx/vy scatter of a frame as ASCII
//   - [PowerSpectrum] and [DominantPeriod]: fluctuation spectrum of a metric
//     series
//
// A gas that has thermalized shows a histogram close to its Rayleigh curve
// whatever the initial speeds were:
//
//	h := analysis.SpeedHistogram(particles, 12)
//	fmt.Println(h.Deviation())
package analysis
