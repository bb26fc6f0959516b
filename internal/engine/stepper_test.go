package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ccdsim/internal/compute"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/engine"
	"github.com/san-kum/ccdsim/internal/vecmath"
)

func ball(pos, vel []float64, mass, radius float64) dynamo.Particle[float64] {
	return dynamo.Particle[float64]{
		Pos:    vecmath.Vec[float64](pos),
		Vel:    vecmath.Vec[float64](vel),
		Mass:   mass,
		Radius: radius,
	}
}

func freeOptions() dynamo.Options {
	opts := dynamo.DefaultOptions()
	opts.Anchor = false
	return opts
}

type recorder struct {
	events []dynamo.Event[float64]
}

func (r *recorder) OnEvent(ev dynamo.Event[float64]) { r.events = append(r.events, ev) }

func totalEnergy(ps []dynamo.Particle[float64]) float64 {
	var e float64
	for _, p := range ps {
		e += p.KineticEnergy()
	}
	return e
}

var _ = Describe("Stepper", func() {
	var (
		rec *recorder
	)

	newStepper := func(opts dynamo.Options) *engine.Stepper[float64] {
		rec = &recorder{}
		s := engine.New[float64](opts, compute.NewSerialBackend())
		s.AddObserver(rec)
		return s
	}

	Describe("head-on collision in one dimension", func() {
		It("swaps velocities at t=1.5 and spends the rest of the step moving apart", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-2}, []float64{1}, 1, 0.5),
				ball([]float64{2}, []float64{-1}, 1, 0.5),
			}

			stats, err := newStepper(freeOptions()).Step(ps, dynamo.AllIndices(2), 10)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.events).To(HaveLen(1))
			Expect(rec.events[0].A).To(Equal(0))
			Expect(rec.events[0].B).To(Equal(1))
			Expect(rec.events[0].Time).To(BeNumerically("~", 1.5, 1e-12))
			Expect(rec.events[0].Anchor).To(BeFalse())

			Expect(ps[0].Vel[0]).To(BeNumerically("~", -1, 1e-12))
			Expect(ps[1].Vel[0]).To(BeNumerically("~", 1, 1e-12))
			Expect(ps[0].Pos[0]).To(BeNumerically("~", -0.5-8.5, 1e-9))
			Expect(ps[1].Pos[0]).To(BeNumerically("~", 0.5+8.5, 1e-9))

			Expect(stats.Events).To(Equal(1))
			Expect(stats.Iterations).To(Equal(2))
		})

		It("gives the same answer on the CPU backend in single precision", func() {
			ps := []dynamo.Particle[float32]{
				{Pos: vecmath.Vec[float32]{-2}, Vel: vecmath.Vec[float32]{1}, Mass: 1, Radius: 0.5},
				{Pos: vecmath.Vec[float32]{2}, Vel: vecmath.Vec[float32]{-1}, Mass: 1, Radius: 0.5},
			}

			s := engine.New[float32](freeOptions(), compute.NewCPUBackend(4))
			_, err := s.Step(ps, dynamo.AllIndices(2), 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(ps[0].Vel[0])).To(BeNumerically("~", -1, 1e-6))
			Expect(float64(ps[1].Pos[0])).To(BeNumerically("~", 9, 1e-5))
		})
	})

	Describe("zero timestep", func() {
		It("leaves every particle untouched", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0, 0}, []float64{1, 2}, 1, 0.5),
				ball([]float64{0.9, 0}, []float64{-1, 0}, 2, 0.5),
				ball([]float64{5, 5}, []float64{0, -3}, 3, 1),
			}
			before := dynamo.Clone(ps)

			stats, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(3), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ps).To(Equal(before))
			Expect(stats).To(Equal(engine.StepStats{}))
			Expect(rec.events).To(BeEmpty())
		})
	})

	Describe("a single still particle", func() {
		It("never collides", func() {
			ps := []dynamo.Particle[float64]{ball([]float64{1, 2, 3}, []float64{0, 0, 0}, 1, 2)}

			for _, anchor := range []bool{true, false} {
				opts := dynamo.DefaultOptions()
				opts.Anchor = anchor
				_, err := newStepper(opts).Step(ps, dynamo.AllIndices(1), 1e6)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.events).To(BeEmpty())
			}
			Expect(ps[0].Pos).To(Equal(vecmath.Vec[float64]{1, 2, 3}))
		})
	})

	Describe("particles with no relative motion", func() {
		It("drift together without contact", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0, 0}, []float64{1, 1}, 1, 0.5),
				ball([]float64{2, 0}, []float64{1, 1}, 1, 0.5),
				ball([]float64{0, 2}, []float64{1, 1}, 1, 0.5),
			}

			_, err := newStepper(freeOptions()).Step(ps, dynamo.AllIndices(3), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(BeEmpty())
			Expect(ps[1].Pos[0]).To(BeNumerically("~", 102, 1e-9))
		})
	})

	Describe("two independent pairs", func() {
		It("resolves them one per iteration in time order", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-100, 0}, []float64{0, 0}, 1, 0.5),
				ball([]float64{-3, 0}, []float64{1, 0}, 1, 0.5),
				ball([]float64{3, 0}, []float64{-1, 0}, 1, 0.5),
				ball([]float64{-2, 10}, []float64{1, 0}, 1, 0.5),
				ball([]float64{2, 10}, []float64{-1, 0}, 1, 0.5),
			}

			stats, err := newStepper(freeOptions()).Step(ps, []int{1, 2, 3, 4}, 5)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.events).To(HaveLen(2))
			Expect(rec.events[0].A).To(Equal(3))
			Expect(rec.events[0].B).To(Equal(4))
			Expect(rec.events[0].Time).To(BeNumerically("~", 1.5, 1e-12))
			Expect(rec.events[1].A).To(Equal(1))
			Expect(rec.events[1].B).To(Equal(2))
			Expect(rec.events[1].Time).To(BeNumerically("~", 2.5, 1e-12))
			Expect(stats.Iterations).To(Equal(3))

			Expect(ps[3].Vel[0]).To(BeNumerically("~", -1, 1e-12))
			Expect(ps[1].Vel[0]).To(BeNumerically("~", -1, 1e-12))
		})

		It("breaks exact ties by the lowest particle index", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-100, 0}, []float64{0, 0}, 1, 0.5),
				ball([]float64{-2, 0}, []float64{1, 0}, 1, 0.5),
				ball([]float64{2, 0}, []float64{-1, 0}, 1, 0.5),
				ball([]float64{-2, 10}, []float64{1, 0}, 1, 0.5),
				ball([]float64{2, 10}, []float64{-1, 0}, 1, 0.5),
			}

			_, err := newStepper(freeOptions()).Step(ps, []int{1, 2, 3, 4}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(HaveLen(2))
			Expect(rec.events[0].A).To(Equal(1))
			Expect(rec.events[1].A).To(Equal(3))
		})
	})

	Describe("the anchor particle", func() {
		It("reflects the normal velocity and stays put", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0, 0}, []float64{0, 0}, 1, 1),
				ball([]float64{-4, 1}, []float64{2, 0.5}, 3, 1),
			}

			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(2), 10)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.events).To(HaveLen(1))
			ev := rec.events[0]
			Expect(ev.Anchor).To(BeTrue())
			Expect(ev.A).To(Equal(1))
			Expect(ev.B).To(Equal(0))

			Expect(ps[0].Pos).To(Equal(vecmath.Vec[float64]{0, 0}))
			Expect(ps[0].Vel).To(Equal(vecmath.Vec[float64]{0, 0}))
			Expect(ps[1].Vel.Norm()).To(BeNumerically("~", math.Hypot(2, 0.5), 1e-9))
		})

		It("negates the normal component exactly", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0}, []float64{0}, 1, 0.5),
				ball([]float64{3}, []float64{-2}, 5, 0.5),
			}

			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(2), 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(HaveLen(1))
			Expect(rec.events[0].Time).To(BeNumerically("~", 1, 1e-12))
			Expect(ps[1].Vel[0]).To(BeNumerically("~", 2, 1e-12))
			Expect(ps[1].Pos[0]).To(BeNumerically("~", 3, 1e-12))
			Expect(ps[0].Pos[0]).To(Equal(0.0))
		})

		It("is an ordinary particle when the anchor is disabled", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0}, []float64{0}, 1, 0.5),
				ball([]float64{3}, []float64{-2}, 1, 0.5),
			}

			_, err := newStepper(freeOptions()).Step(ps, dynamo.AllIndices(2), 1.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(HaveLen(1))
			Expect(rec.events[0].Anchor).To(BeFalse())
			Expect(ps[0].Vel[0]).To(BeNumerically("~", -2, 1e-12))
			Expect(ps[1].Vel[0]).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Describe("conservation", func() {
		It("keeps energy and normal momentum across an oblique unequal-mass contact", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-50, -50, -50}, []float64{0, 0, 0}, 1, 0.1),
				ball([]float64{-3, 0.4, 0.1}, []float64{2, 0, 0.3}, 1.5, 0.6),
				ball([]float64{3, -0.2, 0}, []float64{-1, 0.1, 0}, 4, 0.7),
			}
			e0 := totalEnergy(ps)
			v1, v2 := ps[1].Vel.Clone(), ps[2].Vel.Clone()

			var before, after float64
			s := newStepper(dynamo.DefaultOptions())
			s.AddObserver(engine.ObserverFunc[float64](func(ev dynamo.Event[float64]) {
				d := ps[2].Pos.Sub(ps[1].Pos)
				n := d.Scale(1 / d.Norm())
				before = ps[1].Mass*v1.Dot(n) + ps[2].Mass*v2.Dot(n)
				after = ps[1].Mass*ps[1].Vel.Dot(n) + ps[2].Mass*ps[2].Vel.Dot(n)
			}))

			_, err := s.Step(ps, dynamo.AllIndices(3), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(HaveLen(1))
			Expect(rec.events[0].Anchor).To(BeFalse())

			Expect(totalEnergy(ps)).To(BeNumerically("~", e0, 1e-9))
			Expect(after).To(BeNumerically("~", before, 1e-9))
			Expect(ps[1].Vel.Dot(ps[1].Vel)).NotTo(BeNumerically("~", v1.Dot(v1), 1e-6))
		})

		It("keeps total energy through a crowded gas", func() {
			ps := make([]dynamo.Particle[float64], 0, 64)
			ps = append(ps, ball([]float64{-1000, -1000}, []float64{0, 0}, 1, 0.1))
			for i := 0; i < 63; i++ {
				x := float64(i%8) * 1.5
				y := float64(i/8) * 1.5
				ps = append(ps, ball([]float64{x, y},
					[]float64{math.Sin(float64(i) * 2.1), math.Cos(float64(i) * 0.7)},
					1+float64(i%3), 0.3))
			}
			e0 := totalEnergy(ps)

			s := newStepper(freeOptions())
			for frame := 0; frame < 20; frame++ {
				_, err := s.Step(ps, dynamo.AllIndices(len(ps)), 0.25)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(rec.events).NotTo(BeEmpty())
			Expect(totalEnergy(ps)).To(BeNumerically("~", e0, 1e-6*e0))
		})
	})

	Describe("input validation", func() {
		It("rejects a negative timestep", func() {
			ps := []dynamo.Particle[float64]{ball([]float64{0}, []float64{1}, 1, 1)}
			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(1), -1)
			Expect(err).To(MatchError(dynamo.ErrNegativeTimestep))
		})

		DescribeTable("rejects a non-finite timestep without moving anything",
			func(timestep float64) {
				ps := []dynamo.Particle[float64]{
					ball([]float64{0}, []float64{1}, 1, 0.5),
					ball([]float64{3}, []float64{-1}, 1, 0.5),
				}
				stats, err := newStepper(freeOptions()).Step(ps, dynamo.AllIndices(2), timestep)
				Expect(err).To(MatchError(dynamo.ErrInvalidTimestep))
				Expect(stats.Iterations).To(BeZero())
				Expect(ps[0].Pos).To(Equal(vecmath.Vec[float64]{0}))
				Expect(ps[1].Pos).To(Equal(vecmath.Vec[float64]{3}))
			},
			Entry("+Inf", math.Inf(1)),
			Entry("-Inf", math.Inf(-1)),
			Entry("NaN", math.NaN()),
		)

		It("rejects a massless particle", func() {
			ps := []dynamo.Particle[float64]{ball([]float64{0}, []float64{1}, 0, 1)}
			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(1), 1)
			Expect(err).To(MatchError(dynamo.ErrInvalidParticle))
		})

		It("rejects mixed dimensions", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{0}, []float64{1}, 1, 1),
				ball([]float64{0, 1}, []float64{1, 0}, 1, 1),
			}
			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, dynamo.AllIndices(2), 1)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("rejects out of range active indices", func() {
			ps := []dynamo.Particle[float64]{ball([]float64{0}, []float64{1}, 1, 1)}
			_, err := newStepper(dynamo.DefaultOptions()).Step(ps, []int{0, 1}, 1)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfRange))
		})
	})

	Describe("guards", func() {
		It("stops after MaxEvents contacts in one step", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-2}, []float64{1}, 1, 0.5),
				ball([]float64{0}, []float64{0}, 1, 0.5),
				ball([]float64{2}, []float64{-1}, 1, 0.5),
			}
			opts := freeOptions()
			opts.MaxEvents = 1

			stats, err := newStepper(opts).Step(ps, dynamo.AllIndices(3), 10)
			Expect(err).To(MatchError(dynamo.ErrEventLimit))
			Expect(stats.Events).To(Equal(1))
		})

		It("reports coincident particles beyond the depth cap", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{1, 1}, []float64{0, 0}, 1, 0),
				ball([]float64{1, 1}, []float64{0, 0}, 1, 0),
				ball([]float64{1, 1}, []float64{0, 0}, 1, 0),
				ball([]float64{1, 1}, []float64{0, 0}, 1, 0),
				ball([]float64{1, 1}, []float64{0, 0}, 1, 0),
			}
			opts := freeOptions()
			opts.MaxDepth = 1

			_, err := newStepper(opts).Step(ps, dynamo.AllIndices(5), 1)
			Expect(err).To(MatchError(dynamo.ErrDegenerateTree))
		})
	})

	Describe("inactive particles", func() {
		It("move without taking part in contacts", func() {
			ps := []dynamo.Particle[float64]{
				ball([]float64{-2}, []float64{1}, 1, 0.5),
				ball([]float64{2}, []float64{-1}, 1, 0.5),
			}

			_, err := newStepper(freeOptions()).Step(ps, []int{0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.events).To(BeEmpty())
			Expect(ps[0].Pos[0]).To(BeNumerically("~", 8, 1e-12))
			Expect(ps[1].Pos[0]).To(BeNumerically("~", -8, 1e-12))
		})
	})
})
