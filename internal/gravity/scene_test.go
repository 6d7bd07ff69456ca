package gravity_test

import (
	"math"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
)

// logParams keeps the default G and dt but uses radius = ln(mass) / 5 so
// small hand-built scenes can collide.
func logParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Dimensions = 2
	p.RadiusMassScale = 1
	p.RadiusDivisor = 5
	return p
}

func body(id int, mass float64, pos dynamo.Point, params dynamo.Params) gravity.Body {
	return gravity.NewBody(id, mass, pos, dynamo.Vector{}, params)
}

func mustScene(bodies []gravity.Body, params dynamo.Params) *gravity.Scene {
	s, err := gravity.FromBodies(bodies, params)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func byID(bodies []gravity.Body) map[int]gravity.Body {
	m := make(map[int]gravity.Body, len(bodies))
	for _, b := range bodies {
		m[b.ID()] = b
	}
	return m
}

var bodyCmp = cmp.AllowUnexported(gravity.Body{})

var _ = Describe("Scene", func() {
	Describe("Update", func() {
		It("leaves an empty scene empty and only counts the tick", func() {
			s := mustScene(nil, dynamo.DefaultParams())
			var reports []gravity.TickReport
			s.AddObserver(gravity.ObserverFunc(func(r gravity.TickReport) { reports = append(reports, r) }))

			s.Update()

			Expect(s.Len()).To(Equal(0))
			Expect(s.Bodies()).To(BeEmpty())
			Expect(s.Tick()).To(Equal(1))
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Bodies).To(BeEmpty())
			Expect(reports[0].Merges).To(BeEmpty())
		})

		It("moves a lone body by exactly its velocity", func() {
			p := dynamo.DefaultParams()
			b := gravity.NewBody(3, 5e6, dynamo.Vec3(0.25, -1.5, 2), dynamo.Vec3(0.125, 0.5, -1), p)
			s := mustScene([]gravity.Body{b}, p)

			s.Update()

			Expect(s.Len()).To(Equal(1))
			got := s.Bodies()[0]
			Expect(got.Position()).To(Equal(dynamo.Vec3(0.375, -1, 1)))
			Expect(got.Velocity()).To(Equal(b.Velocity()))
			Expect(got.Mass()).To(Equal(b.Mass()))
		})

		It("merges two overlapping bodies into the heavier one's place", func() {
			p := logParams()
			a := body(0, 100, dynamo.Vec2(0, 0), p)
			b := body(1, 300, dynamo.Vec2(1, 0), p)
			Expect(a.Radius() + b.Radius()).To(BeNumerically(">", 1))

			s := mustScene([]gravity.Body{a, b}, p)
			s.Update()

			Expect(s.Len()).To(Equal(1))
			merged := s.Bodies()[0]
			Expect(merged.Mass()).To(Equal(400.0))
			Expect(merged.Position().X).To(BeNumerically("~", 1, 1e-12))
			Expect(merged.Position().Y).To(BeNumerically("~", 0, 1e-12))
			Expect(merged.Velocity().Norm()).To(BeNumerically("<", 1e-15))
			Expect(merged.Radius()).To(Equal(gravity.CalcRadius(400, p)))
		})

		It("pulls widely separated bodies toward each other without merging", func() {
			p := dynamo.Params{G: 1, Dt: 1, RadiusMassScale: 1e4, RadiusDivisor: 500, Dimensions: 2}
			before := []gravity.Body{
				body(0, 1e5, dynamo.Vec2(0, 0), p),
				body(1, 2e5, dynamo.Vec2(100, 0), p),
				body(2, 3e5, dynamo.Vec2(0, 100), p),
			}
			s := mustScene(before, p)

			s.Update()

			Expect(s.Len()).To(Equal(3))
			after := byID(s.Bodies())
			for _, b := range before {
				var pull dynamo.Vector
				for _, o := range before {
					if o.ID() == b.ID() {
						continue
					}
					d := b.Distance(o)
					pull = pull.Add(o.Position().Sub(b.Position()).Unit().Scale(o.Mass() / (d * d)))
				}

				moved := after[b.ID()].Position().Sub(b.Position())
				Expect(moved.Norm()).To(BeNumerically(">", 0))
				cos := moved.Dot(pull) / (moved.Norm() * pull.Norm())
				Expect(cos).To(BeNumerically("~", 1, 1e-9), "body %d moved %v, pulled %v", b.ID(), moved, pull)
				Expect(after[b.ID()].Mass()).To(Equal(b.Mass()))
			}
		})

		It("pulls nearby bodies toward each other under the default constants", func() {
			p := dynamo.DefaultParams()
			before := []gravity.Body{
				body(0, 1e7, dynamo.Vec3(0, 0, 0), p),
				body(1, 1e7, dynamo.Vec3(0.5, 0, 0), p),
				body(2, 1e7, dynamo.Vec3(0, 0.5, 0), p),
			}
			for i, a := range before {
				for _, b := range before[i+1:] {
					Expect(a.Colliding(b)).To(BeFalse())
				}
			}
			s := mustScene(before, p)

			s.Update()

			Expect(s.Len()).To(Equal(3))
			after := byID(s.Bodies())
			for _, b := range before {
				var pull dynamo.Vector
				for _, o := range before {
					if o.ID() != b.ID() {
						pull = pull.Add(b.GravityForce(o))
					}
				}

				// Displacements are a few ulps of the coordinates, so the
				// direction is only checked loosely.
				moved := after[b.ID()].Position().Sub(b.Position())
				Expect(moved.Norm()).To(BeNumerically(">", 0), "body %d did not move", b.ID())
				cos := moved.Dot(pull) / (moved.Norm() * pull.Norm())
				Expect(cos).To(BeNumerically(">", 0.95), "body %d moved %v, pulled %v", b.ID(), moved, pull)
				Expect(after[b.ID()].Mass()).To(Equal(b.Mass()))
			}
		})

		It("re-tests the merged body against the next neighbour", func() {
			p := logParams()
			s := mustScene([]gravity.Body{
				body(0, 20, dynamo.Vec2(0, 0), p),
				body(1, 100, dynamo.Vec2(1, 0), p),
				body(2, 20, dynamo.Vec2(2.3, 0), p),
			}, p)

			var reports []gravity.TickReport
			s.AddObserver(gravity.ObserverFunc(func(r gravity.TickReport) { reports = append(reports, r) }))
			s.Update()

			Expect(s.Len()).To(Equal(1))
			merged := s.Bodies()[0]
			Expect(merged.ID()).To(Equal(0))
			Expect(merged.Mass()).To(Equal(140.0))
			Expect(merged.Position().X).To(BeNumerically("~", 1, 1e-12))

			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Tick).To(Equal(1))
			Expect(reports[0].Merges).To(Equal([]gravity.Merge{
				{Survivor: 0, Absorbed: 1},
				{Survivor: 0, Absorbed: 2},
			}))
		})

		It("defers collisions between bodies that are not adjacent in sort order", func() {
			p := logParams()
			s := mustScene([]gravity.Body{
				body(0, 20, dynamo.Vec2(0, 0), p),
				body(1, 1, dynamo.Vec2(1, 0), p),
				body(2, 20, dynamo.Vec2(0.5, math.Sqrt(3)/2), p),
			}, p)
			bodies := byID(s.Bodies())
			Expect(bodies[0].Colliding(bodies[2])).To(BeTrue())

			s.Update()

			Expect(s.Len()).To(Equal(3))
		})

		It("collapses a dense cluster into a single body in one tick", func() {
			gen := gravity.Generator{
				Mass:     gravity.Range{Min: 1e7, Max: 1e8},
				Position: [3]gravity.Range{{Min: -0.005, Max: 0.005}, {Min: -0.005, Max: 0.005}, {}},
				Anchor:   gravity.Anchor{Disabled: true},
			}
			s, err := gravity.New(20, 11, dynamo.DefaultParams(), gen)
			Expect(err).NotTo(HaveOccurred())
			total := s.TotalMass()

			s.Update()

			Expect(s.Len()).To(Equal(1))
			Expect(s.TotalMass()).To(BeNumerically("~", total, total*1e-12))
		})

		It("conserves total mass across ticks with merges", func() {
			p := dynamo.DefaultParams()
			p.Dimensions = 2
			s, err := gravity.New(40, 3, p, gravity.Generator2D())
			Expect(err).NotTo(HaveOccurred())

			merges := 0
			s.AddObserver(gravity.ObserverFunc(func(r gravity.TickReport) { merges += len(r.Merges) }))
			total := s.TotalMass()
			count := s.Len()

			for i := 0; i < 25; i++ {
				s.Update()
				Expect(s.TotalMass()).To(BeNumerically("~", total, total*1e-12))
				for _, b := range s.Bodies() {
					Expect(b.IsFinite()).To(BeTrue(), "tick %d: %v", s.Tick(), b)
				}
			}
			Expect(s.Len()).To(Equal(count - merges))
		})
	})

	Describe("determinism", func() {
		run := func(workers int) []gravity.Body {
			s, err := gravity.New(150, 42, dynamo.DefaultParams(), gravity.Generator3D())
			Expect(err).NotTo(HaveOccurred())
			s.SetWorkers(workers)
			for i := 0; i < 3; i++ {
				s.Update()
			}
			return s.Bodies()
		}

		It("produces identical bodies for identical input", func() {
			Expect(cmp.Diff(run(0), run(0), bodyCmp)).To(BeEmpty())
		})

		It("does not depend on the worker count", func() {
			serial := run(1)
			Expect(cmp.Diff(serial, run(3), bodyCmp)).To(BeEmpty())
			Expect(cmp.Diff(serial, run(16), bodyCmp)).To(BeEmpty())
		})
	})

	Describe("FromBodies", func() {
		It("rejects duplicate ids", func() {
			p := logParams()
			_, err := gravity.FromBodies([]gravity.Body{body(1, 10, dynamo.Vec2(0, 0), p), body(1, 10, dynamo.Vec2(5, 0), p)}, p)
			Expect(err).To(MatchError(dynamo.ErrDuplicateID))
		})

		It("rejects non-positive masses", func() {
			p := logParams()
			_, err := gravity.FromBodies([]gravity.Body{body(1, -10, dynamo.Vec2(0, 0), p)}, p)
			Expect(err).To(MatchError(dynamo.ErrInvalidMass))
		})

		It("rejects invalid params", func() {
			p := logParams()
			p.Dt = 0
			_, err := gravity.FromBodies(nil, p)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("does not alias the caller's slice", func() {
			p := logParams()
			in := []gravity.Body{body(1, 10, dynamo.Vec2(0, 0), p)}
			s := mustScene(in, p)
			out := s.Bodies()
			out[0] = body(9, 99, dynamo.Vec2(1, 1), p)
			Expect(s.IDs()).To(Equal([]int{1}))
		})
	})
})
