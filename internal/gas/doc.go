// Package gas owns a population of particles in a rectangular container and
// advances it one tick at a time.
//
// The [System] is the engine's only stateful type. Callers drive it by calling
// [System.Update] with the current container size once per frame and read
// [System.Particles] to draw. Gas-state fields (volume, temperature, pressure,
// moles) are display values set by the caller; Update never touches them.
//
// # Example
//
//	sys, _ := gas.New(50)
//	sys.Scatter(600, 400)
//	for range ticker.C {
//	    sys.Update(600, 400)
//	}
//
// # Thread Safety
//
// System is NOT safe for concurrent use. Mutating the particle slice from
// another goroutine while Update runs is undefined behavior; wrap the system
// in a sim.Controller when several goroutines need access.
package gas
