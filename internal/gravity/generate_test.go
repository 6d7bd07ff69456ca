package gravity

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Ryneqq/nbody/internal/dynamo"
)

func TestGenerate_Deterministic(t *testing.T) {
	p := dynamo.DefaultParams()
	gen := Generator3D()

	a, err := gen.Generate(rand.New(rand.NewSource(99)), 30, p)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	b, err := gen.Generate(rand.New(rand.NewSource(99)), 30, p)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Body{})); diff != "" {
		t.Errorf("same seed produced different bodies (-first +second):\n%s", diff)
	}

	c, _ := gen.Generate(rand.New(rand.NewSource(100)), 30, p)
	if cmp.Equal(a, c, cmp.AllowUnexported(Body{})) {
		t.Error("different seeds produced identical bodies")
	}
}

func TestGenerate_RangesAndAnchor(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		dims int
	}{
		{"3d", Generator3D(), 3},
		{"2d", Generator2D(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := dynamo.DefaultParams()
			p.Dimensions = tt.dims
			count := 50

			bodies, err := tt.gen.Generate(rand.New(rand.NewSource(1)), count, p)
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			if len(bodies) != count+1 {
				t.Fatalf("expected %d bodies, got %d", count+1, len(bodies))
			}

			others := 0.0
			for i, b := range bodies[:count] {
				if b.ID() != i {
					t.Errorf("body %d has id %d", i, b.ID())
				}
				if b.Mass() < tt.gen.Mass.Min || b.Mass() >= tt.gen.Mass.Max {
					t.Errorf("body %d mass %g outside range", i, b.Mass())
				}
				pos := b.Position().Components()
				for axis := 0; axis < 2; axis++ {
					r := tt.gen.Position[axis]
					if pos[axis] < r.Min || pos[axis] >= r.Max {
						t.Errorf("body %d axis %d = %g outside [%g, %g)", i, axis, pos[axis], r.Min, r.Max)
					}
				}
				if b.Position().Z != 0 || b.Velocity().Z != 0 {
					t.Errorf("body %d left the plane: %v", i, b)
				}
				others += b.Mass()
			}

			anchor := bodies[count]
			if anchor.ID() != AnchorID(count) {
				t.Errorf("anchor id = %d, want %d", anchor.ID(), AnchorID(count))
			}
			if !anchor.Velocity().IsZero() {
				t.Errorf("anchor velocity = %v, want zero", anchor.Velocity())
			}
			if !anchor.Position().Equal(tt.gen.Anchor.Position) {
				t.Errorf("anchor position = %v, want %v", anchor.Position(), tt.gen.Anchor.Position)
			}
			if anchor.Mass() <= others {
				t.Errorf("anchor mass %g does not dominate the rest (%g)", anchor.Mass(), others)
			}
		})
	}
}

func TestGenerate_Flattens2D(t *testing.T) {
	p := dynamo.DefaultParams()
	p.Dimensions = 2
	gen := Generator3D()
	gen.Position[2] = Range{Min: -5, Max: 5}
	gen.Velocity[2] = Range{Min: -5, Max: 5}

	bodies, err := gen.Generate(rand.New(rand.NewSource(5)), 10, p)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	for _, b := range bodies {
		if b.Position().Z != 0 || b.Velocity().Z != 0 {
			t.Errorf("2D body has Z component: %v", b)
		}
	}
}

func TestGenerator_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Generator)
		want   error
	}{
		{"zero min mass", func(g *Generator) { g.Mass.Min = 0 }, dynamo.ErrInvalidMass},
		{"inverted mass range", func(g *Generator) { g.Mass = Range{Min: 10, Max: 1} }, dynamo.ErrInvalidMass},
		{"massless anchor", func(g *Generator) { g.Anchor.Mass = 0 }, dynamo.ErrInvalidMass},
		{"disabled massless anchor", func(g *Generator) { g.Anchor = Anchor{Disabled: true} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Generator3D()
			tt.mutate(&g)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCoalesce_Empty(t *testing.T) {
	out, merges := Coalesce(nil)
	if len(out) != 0 || merges != nil {
		t.Errorf("Coalesce(nil) = %v, %v", out, merges)
	}
}

func BenchmarkSceneUpdate(b *testing.B) {
	for _, n := range []int{30, 300} {
		b.Run(fmt.Sprintf("bodies=%d", n), func(b *testing.B) {
			s, err := New(n, 1, dynamo.DefaultParams(), Generator3D())
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Update()
			}
		})
	}
}
