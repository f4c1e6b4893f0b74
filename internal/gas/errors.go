package gas

import "errors"

// Construction errors. Runtime capacity violations are silent no-ops instead.
var (
	// ErrNegativeCount indicates a negative requested particle count.
	ErrNegativeCount = errors.New("gas: particle count must not be negative")

	// ErrCapacity indicates more particles than the system can hold.
	ErrCapacity = errors.New("gas: particle count exceeds capacity")

	// ErrInvalidRadius indicates a particle whose radius is not positive and finite.
	ErrInvalidRadius = errors.New("gas: particle radius must be positive and finite")

	// ErrDuplicateParticle indicates the same particle appearing twice in a collection.
	ErrDuplicateParticle = errors.New("gas: particle listed more than once")

	// ErrNilParticle indicates a nil entry in a particle collection.
	ErrNilParticle = errors.New("gas: nil particle")

	// ErrInvalidCapacity indicates a non-positive maximum particle count.
	ErrInvalidCapacity = errors.New("gas: max particles must be positive")
)
