package gravity

import (
	"fmt"
	"math/rand"

	"github.com/Ryneqq/nbody/internal/dynamo"
)

// Range is a half-open sampling interval [Min, Max). A degenerate range
// always yields Min.
type Range struct {
	Min, Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Anchor is the heavy, motionless body that gives a scenario its centre.
type Anchor struct {
	Mass     float64
	Position dynamo.Point
	Disabled bool
}

// Generator samples random bodies from fixed ranges. Position and Velocity
// are indexed by axis; the Z entries are ignored in 2D.
type Generator struct {
	Mass     Range
	Position [3]Range
	Velocity [3]Range
	Anchor   Anchor
}

// Generator3D matches the 3D regime: a flat disc of light bodies around a
// 1e10 anchor at the origin.
func Generator3D() Generator {
	return Generator{
		Mass:     Range{Min: 1e5, Max: 1e7},
		Position: [3]Range{{Min: -1, Max: 1}, {Min: -1, Max: 1}, {}},
		Velocity: [3]Range{{Min: -1, Max: 1}, {Min: -1, Max: 1}, {}},
		Anchor:   Anchor{Mass: 1e10},
	}
}

// Generator2D matches the 2D regime laid out on a 1200x900 plane with a
// 1e15 anchor in the middle.
func Generator2D() Generator {
	return Generator{
		Mass:     Range{Min: 1e4, Max: 1e13},
		Position: [3]Range{{Min: 0, Max: 1200}, {Min: 0, Max: 900}, {}},
		Velocity: [3]Range{{Min: -2, Max: 2}, {Min: -2, Max: 2}, {}},
		Anchor:   Anchor{Mass: 1e15, Position: dynamo.Vec2(600, 450)},
	}
}

func (g Generator) Validate() error {
	if !(g.Mass.Min > 0) || g.Mass.Max < g.Mass.Min {
		return fmt.Errorf("%w: mass range [%g, %g)", dynamo.ErrInvalidMass, g.Mass.Min, g.Mass.Max)
	}
	if !g.Anchor.Disabled && !(g.Anchor.Mass > 0) {
		return fmt.Errorf("anchor: %w, got %g", dynamo.ErrInvalidMass, g.Anchor.Mass)
	}
	if !g.Anchor.Position.IsFinite() {
		return fmt.Errorf("anchor position: %w", dynamo.ErrNonFinite)
	}
	return nil
}

// AnchorID is the id the anchor receives in a scenario of count bodies.
func AnchorID(count int) int { return count }

// Generate draws count bodies with ids 0..count-1, then appends the anchor.
// The same rng state always yields the same bodies.
func (g Generator) Generate(rng *rand.Rand, count int, params dynamo.Params) ([]Body, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	bodies := make([]Body, 0, count+1)
	for id := 0; id < count; id++ {
		mass := g.Mass.sample(rng)
		var pos, vel [3]float64
		for axis := range pos {
			pos[axis] = g.Position[axis].sample(rng)
		}
		for axis := range vel {
			vel[axis] = g.Velocity[axis].sample(rng)
		}
		position := dynamo.Vec3(pos[0], pos[1], pos[2]).Project(params.Dimensions)
		velocity := dynamo.Vec3(vel[0], vel[1], vel[2]).Project(params.Dimensions)
		bodies = append(bodies, NewBody(id, mass, position, velocity, params))
	}

	if !g.Anchor.Disabled {
		anchor := NewBody(AnchorID(count), g.Anchor.Mass, g.Anchor.Position.Project(params.Dimensions), dynamo.Vector{}, params)
		bodies = append(bodies, anchor)
	}

	return bodies, nil
}
