package gas

import "github.com/san-kum/gassim/internal/physics"

// DefaultMaxParticles caps a system unless WithMaxParticles says otherwise.
const DefaultMaxParticles = 300

// Template describes freshly spawned particles.
type Template struct {
	Radius float64
	// RadiusSpread varies radii uniformly in [Radius-RadiusSpread, Radius+RadiusSpread].
	RadiusSpread float64
	Speed        float64
	Color        physics.RGB
}

func DefaultTemplate() Template {
	return Template{
		Radius: physics.DefaultRadius,
		Speed:  physics.DefaultSpeed,
		Color:  physics.Red,
	}
}

type settings struct {
	maxParticles int
	template     Template
	model        physics.GasModel
	interaction  physics.InteractionParams
	resolver     physics.Resolver
	seed         int64
	state        GasState
}

// Option configures a System at construction.
type Option func(*settings)

func WithMaxParticles(n int) Option {
	return func(s *settings) { s.maxParticles = n }
}

func WithTemplate(t Template) Option {
	return func(s *settings) { s.template = t }
}

func WithGasModel(m physics.GasModel) Option {
	return func(s *settings) { s.model = m }
}

func WithInteraction(p physics.InteractionParams) Option {
	return func(s *settings) { s.interaction = p }
}

// WithResolver replaces the default elastic collision resolver.
func WithResolver(r physics.Resolver) Option {
	return func(s *settings) { s.resolver = r }
}

// WithSeed fixes the RNG used for scattering and spawning.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed = seed }
}

func WithGasState(st GasState) Option {
	return func(s *settings) { s.state = st }
}

func defaultSettings() settings {
	return settings{
		maxParticles: DefaultMaxParticles,
		template:     DefaultTemplate(),
		model:        physics.Ideal,
		interaction:  physics.DefaultInteractionParams(),
		resolver:     physics.ResolveElastic,
		seed:         1,
		state:        DefaultGasState(),
	}
}
