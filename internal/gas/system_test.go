package gas_test

import (
	"math"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
)

func particle(x, y, vx, vy, r float64) *physics.Particle {
	return &physics.Particle{
		Pos:    physics.Vec2{X: x, Y: y},
		Vel:    physics.Vec2{X: vx, Y: vy},
		Radius: r,
		Color:  physics.Red,
	}
}

var _ = Describe("System", func() {
	Describe("construction", func() {
		It("clamps the requested count to capacity", func() {
			sys, err := gas.New(1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Len()).To(Equal(gas.DefaultMaxParticles))
		})

		It("rejects a negative count", func() {
			_, err := gas.New(-1)
			Expect(err).To(MatchError(gas.ErrNegativeCount))
		})

		It("rejects a non-positive capacity", func() {
			_, err := gas.New(1, gas.WithMaxParticles(0))
			Expect(err).To(MatchError(gas.ErrInvalidCapacity))
		})

		It("rejects particles with a non-positive radius", func() {
			_, err := gas.NewFromParticles([]*physics.Particle{particle(1, 1, 0, 0, 0)})
			Expect(err).To(MatchError(gas.ErrInvalidRadius))
		})

		It("rejects particles with an infinite radius", func() {
			_, err := gas.NewFromParticles([]*physics.Particle{particle(1, 1, 0, 0, math.Inf(1))})
			Expect(err).To(MatchError(gas.ErrInvalidRadius))
		})

		It("rejects the same particle listed twice", func() {
			p := particle(50, 50, 1, 0, 5)
			_, err := gas.NewFromParticles([]*physics.Particle{p, particle(100, 100, 0, 0, 5), p})
			Expect(err).To(MatchError(gas.ErrDuplicateParticle))
		})

		It("rejects nil particles", func() {
			_, err := gas.NewFromParticles([]*physics.Particle{nil})
			Expect(err).To(MatchError(gas.ErrNilParticle))
		})

		It("rejects collections larger than capacity", func() {
			ps := []*physics.Particle{particle(10, 10, 0, 0, 1), particle(20, 20, 0, 0, 1)}
			_, err := gas.NewFromParticles(ps, gas.WithMaxParticles(1))
			Expect(err).To(MatchError(gas.ErrCapacity))
		})

		It("builds default particles before bounds are known", func() {
			sys, err := gas.New(3)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range sys.Particles() {
				Expect(*p).To(Equal(*physics.DefaultParticle()))
			}
		})
	})

	Describe("Update", func() {
		It("resolves the head-on scenario and conserves momentum", func() {
			a := particle(10, 50, 1, 0, 5)
			b := particle(19, 50, -1, 0, 5)
			sys, err := gas.NewFromParticles([]*physics.Particle{a, b})
			Expect(err).NotTo(HaveOccurred())

			sys.Update(100, 100)

			Expect(a.Vel.X).NotTo(Equal(1.0))
			Expect(b.Vel.X).NotTo(Equal(-1.0))
			Expect(a.Vel.X + b.Vel.X).To(BeNumerically("~", 0, 1e-12))
			Expect(a.Pos.X).To(Equal(9.0))
			Expect(b.Pos.X).To(Equal(20.0))
		})

		It("behaves the same with the exchange resolver for equal masses", func() {
			a := particle(10, 50, 1, 0, 5)
			b := particle(19, 50, -1, 0, 5)
			sys, err := gas.NewFromParticles([]*physics.Particle{a, b}, gas.WithResolver(physics.ResolveExchange))
			Expect(err).NotTo(HaveOccurred())

			sys.Update(100, 100)

			Expect(a.Vel.X).To(Equal(-1.0))
			Expect(b.Vel.X).To(Equal(1.0))
		})

		It("leaves pairs separating along the tangent untouched", func() {
			a := particle(50, 50, 1, 1, 5)
			b := particle(58, 50, 0, 0, 5)
			sys, err := gas.NewFromParticles([]*physics.Particle{a, b})
			Expect(err).NotTo(HaveOccurred())

			sys.Update(200, 200)

			Expect(a.Vel).To(Equal(physics.Vec2{X: 1, Y: 1}))
			Expect(b.Vel).To(Equal(physics.Vec2{}))
		})

		It("reflects off a wall using the next position", func() {
			p := particle(5, 50, -3, 0, 5)
			sys, err := gas.NewFromParticles([]*physics.Particle{p})
			Expect(err).NotTo(HaveOccurred())

			sys.Update(100, 100)

			Expect(p.Vel.X).To(Equal(3.0))
			Expect(p.Pos.X).To(Equal(2.0))
			Expect(p.Pos.X).To(BeNumerically(">=", 0))
		})

		It("never changes the gas-state fields", func() {
			sys, err := gas.New(20, gas.WithSeed(7))
			Expect(err).NotTo(HaveOccurred())
			sys.SetState(gas.GasState{Volume: 2, Temperature: 300, Pressure: 1.5, Moles: 0.1})
			sys.Scatter(200, 200)

			for i := 0; i < 50; i++ {
				sys.Update(200, 200)
			}

			Expect(sys.State()).To(Equal(gas.GasState{Volume: 2, Temperature: 300, Pressure: 1.5, Moles: 0.1}))
			Expect(sys.Ticks()).To(Equal(50))
		})

		It("remembers the latest bounds", func() {
			sys, _ := gas.New(0)
			_, _, ok := sys.Bounds()
			Expect(ok).To(BeFalse())

			sys.Update(320, 240)
			w, h, ok := sys.Bounds()
			Expect(ok).To(BeTrue())
			Expect(w).To(Equal(320.0))
			Expect(h).To(Equal(240.0))
		})

		It("pulls neighbors together under the van der Waals model", func() {
			a := particle(50, 50, 0, 0, 5)
			b := particle(70, 50, 0, 0, 5)
			sys, err := gas.NewFromParticles([]*physics.Particle{a, b},
				gas.WithGasModel(physics.VanDerWaals),
				gas.WithInteraction(physics.InteractionParams{Attraction: 1, Range: 3}))
			Expect(err).NotTo(HaveOccurred())

			sys.Update(200, 200)

			Expect(a.Vel.X).To(BeNumerically(">", 0))
			Expect(b.Vel.X).To(BeNumerically("<", 0))
		})

		It("keeps kinetic energy constant for an ideal gas", func() {
			sys, err := gas.New(40, gas.WithSeed(3), gas.WithTemplate(gas.Template{Radius: 4, RadiusSpread: 2, Speed: 2, Color: physics.Red}))
			Expect(err).NotTo(HaveOccurred())
			sys.Scatter(300, 300)
			e0 := sys.KineticEnergy()

			for i := 0; i < 200; i++ {
				sys.Update(300, 300)
			}

			Expect(sys.KineticEnergy()).To(BeNumerically("~", e0, e0*1e-9))
		})
	})

	Describe("Scatter", func() {
		It("places every particle inside the container", func() {
			sys, err := gas.New(100, gas.WithSeed(11))
			Expect(err).NotTo(HaveOccurred())
			sys.Scatter(400, 300)

			for _, p := range sys.Particles() {
				Expect(p.Pos.X).To(BeNumerically(">=", p.Radius))
				Expect(p.Pos.X).To(BeNumerically("<=", 400-p.Radius))
				Expect(p.Pos.Y).To(BeNumerically(">=", p.Radius))
				Expect(p.Pos.Y).To(BeNumerically("<=", 300-p.Radius))
				Expect(p.Speed()).To(BeNumerically("~", physics.DefaultSpeed, 1e-12))
			}
		})

		It("is reproducible for a fixed seed", func() {
			a, _ := gas.New(10, gas.WithSeed(42))
			b, _ := gas.New(10, gas.WithSeed(42))
			a.Scatter(100, 100)
			b.Scatter(100, 100)
			for i := range a.Particles() {
				Expect(*a.Particles()[i]).To(Equal(*b.Particles()[i]))
			}
		})
	})

	Describe("population management", func() {
		var sys *gas.System

		BeforeEach(func() {
			var err error
			sys, err = gas.New(0, gas.WithMaxParticles(10))
			Expect(err).NotTo(HaveOccurred())
		})

		It("ignores Add past capacity", func() {
			for i := 0; i < 15; i++ {
				sys.Add(physics.DefaultParticle())
			}
			Expect(sys.Len()).To(Equal(10))
		})

		It("ignores nil in Add", func() {
			sys.Add(nil)
			Expect(sys.Len()).To(Equal(0))
		})

		DescribeTable("ignores Add for an invalid radius",
			func(r float64) {
				sys.Add(particle(20, 20, 1, 0, r))
				Expect(sys.Len()).To(Equal(0))
			},
			Entry("zero", 0.0),
			Entry("negative", -5.0),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("rejects a whole batch holding an invalid radius", func() {
			sys.AddAll([]*physics.Particle{particle(20, 20, 0, 0, 5), particle(40, 40, 0, 0, 0)})
			Expect(sys.Len()).To(Equal(0))

			sys.AddAll([]*physics.Particle{particle(20, 20, 0, 0, -5)})
			Expect(sys.Len()).To(Equal(0))
		})

		It("ignores Add for a particle it already owns", func() {
			p := particle(50, 50, 1, 0, 5)
			sys.Add(p)
			sys.Add(p)
			Expect(sys.Len()).To(Equal(1))

			sys.Update(200, 200)
			Expect(p.Pos.X).To(BeNumerically("==", 51))
		})

		It("rejects a batch that repeats a particle or holds an owned one", func() {
			p := particle(50, 50, 1, 0, 5)
			sys.AddAll([]*physics.Particle{p, p})
			Expect(sys.Len()).To(Equal(0))

			sys.Add(p)
			sys.AddAll([]*physics.Particle{particle(100, 100, 0, 0, 5), p})
			Expect(sys.Len()).To(Equal(1))
		})

		It("adds a batch only when all of it fits", func() {
			sys.Reset(8)
			sys.AddAll([]*physics.Particle{physics.DefaultParticle(), physics.DefaultParticle(), physics.DefaultParticle()})
			Expect(sys.Len()).To(Equal(8))

			sys.AddAll([]*physics.Particle{physics.DefaultParticle(), physics.DefaultParticle()})
			Expect(sys.Len()).To(Equal(10))
		})

		It("replaces the collection on Reset", func() {
			sys.Reset(4)
			first := sys.Particles()[0]
			sys.Reset(6)
			Expect(sys.Len()).To(Equal(6))
			Expect(sys.Particles()).NotTo(ContainElement(BeIdenticalTo(first)))

			sys.Reset(50)
			Expect(sys.Len()).To(Equal(10))
		})

		It("removes from the front and clamps the count", func() {
			sys.Reset(5)
			keep := sys.Particles()[2]
			sys.RemoveParticles(2)
			Expect(sys.Len()).To(Equal(3))
			Expect(sys.Particles()[0]).To(BeIdenticalTo(keep))

			sys.RemoveParticles(100)
			Expect(sys.Len()).To(Equal(0))

			sys.RemoveParticles(1)
			Expect(sys.Len()).To(Equal(0))
		})

		It("ignores SetNumberOfParticles above capacity", func() {
			sys.Reset(3)
			sys.SetNumberOfParticles(11)
			Expect(sys.Len()).To(Equal(3))
			sys.SetNumberOfParticles(-1)
			Expect(sys.Len()).To(Equal(3))
		})

		DescribeTable("SetNumberOfParticles reaches exactly n",
			func(start, n int) {
				sys.Reset(start)
				sys.SetNumberOfParticles(n)
				Expect(sys.Len()).To(Equal(n))
			},
			Entry("grow from empty", 0, 7),
			Entry("grow partially", 3, 9),
			Entry("shrink", 9, 2),
			Entry("shrink to zero", 5, 0),
			Entry("unchanged", 4, 4),
			Entry("fill to capacity", 1, 10),
		)

		It("spawns grown particles inside known bounds", func() {
			sys.Update(100, 80)
			sys.SetNumberOfParticles(10)
			for _, p := range sys.Particles() {
				Expect(p.Pos.X).To(BeNumerically(">=", p.Radius))
				Expect(p.Pos.X).To(BeNumerically("<=", 100-p.Radius))
				Expect(p.Pos.Y).To(BeNumerically(">=", p.Radius))
				Expect(p.Pos.Y).To(BeNumerically("<=", 80-p.Radius))
			}
		})

		It("never exceeds capacity under random operations", func() {
			rng := rand.New(rand.NewSource(99))
			for i := 0; i < 500; i++ {
				switch rng.Intn(5) {
				case 0:
					sys.Add(physics.DefaultParticle())
				case 1:
					batch := make([]*physics.Particle, rng.Intn(4))
					for j := range batch {
						batch[j] = physics.DefaultParticle()
					}
					sys.AddAll(batch)
				case 2:
					sys.SetNumberOfParticles(rng.Intn(15) - 2)
				case 3:
					sys.Reset(rng.Intn(20))
				case 4:
					sys.RemoveParticles(rng.Intn(4))
				}
				Expect(sys.Len()).To(BeNumerically("<=", sys.MaxParticles()))
				Expect(sys.Len()).To(BeNumerically(">=", 0))
			}
		})
	})

	Describe("gas state", func() {
		It("round-trips through the setters", func() {
			sys, _ := gas.New(0)
			sys.SetVolume(2)
			sys.SetTemperature(273.15)
			sys.SetPressure(0.5)
			sys.SetMoles(3)
			Expect(sys.Volume()).To(Equal(2.0))
			Expect(sys.Temperature()).To(Equal(273.15))
			Expect(sys.Pressure()).To(Equal(0.5))
			Expect(sys.Moles()).To(Equal(3.0))
		})

		It("sets fields by name", func() {
			sys, _ := gas.New(0)
			Expect(sys.SetParam("pressure", 4)).To(Succeed())
			Expect(sys.GetParams()).To(HaveKeyWithValue("pressure", 4.0))
			Expect(sys.SetParam("entropy", 1)).NotTo(Succeed())
		})
	})

	Describe("diagnostics", func() {
		It("dumps system and particle state", func() {
			sys, err := gas.NewFromParticles([]*physics.Particle{particle(10, 20, 0, 0, 5), particle(30, 40, 0, 0, 6)})
			Expect(err).NotTo(HaveOccurred())

			Expect(sys.String()).To(ContainSubstring("'totalParticles':2"))
			Expect(sys.String()).To(ContainSubstring("'MAX_PARTICLES':300"))

			dump := sys.StringifyParticles()
			Expect(strings.Count(dump, "'Particle'")).To(Equal(2))
			Expect(dump).To(ContainSubstring("'xPos':30, 'yPos':40"))
		})
	})
})
