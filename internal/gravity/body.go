package gravity

import (
	"fmt"
	"math"

	"github.com/Ryneqq/nbody/internal/dynamo"
)

// Body is a single gravitating point mass. The radius is derived from the
// mass and is never set on its own.
type Body struct {
	id       int
	mass     float64
	radius   float64
	position dynamo.Point
	velocity dynamo.Vector
	params   dynamo.Params
}

// NewBody builds a body without validating its inputs.
func NewBody(id int, mass float64, position dynamo.Point, velocity dynamo.Vector, params dynamo.Params) Body {
	return Body{
		id:       id,
		mass:     mass,
		radius:   CalcRadius(mass, params),
		position: position,
		velocity: velocity,
		params:   params,
	}
}

// NewValidatedBody is NewBody that rejects non-positive masses and
// non-finite coordinates.
func NewValidatedBody(id int, mass float64, position dynamo.Point, velocity dynamo.Vector, params dynamo.Params) (Body, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return Body{}, fmt.Errorf("body %d: %w, got %g", id, dynamo.ErrInvalidMass, mass)
	}
	if !position.IsFinite() {
		return Body{}, fmt.Errorf("body %d position %v: %w", id, position, dynamo.ErrNonFinite)
	}
	if !velocity.IsFinite() {
		return Body{}, fmt.Errorf("body %d velocity %v: %w", id, velocity, dynamo.ErrNonFinite)
	}
	return NewBody(id, mass, position, velocity, params), nil
}

// CalcRadius maps mass to a display radius: ln(mass/scale) / divisor.
func CalcRadius(mass float64, params dynamo.Params) float64 {
	return math.Log(mass/params.RadiusMassScale) / params.RadiusDivisor
}

func (b Body) ID() int                 { return b.id }
func (b Body) Mass() float64           { return b.mass }
func (b Body) Radius() float64         { return b.radius }
func (b Body) Position() dynamo.Point  { return b.position }
func (b Body) Velocity() dynamo.Vector { return b.velocity }

// Distance is the Euclidean distance between the two positions.
func (b Body) Distance(other Body) float64 {
	return other.position.Sub(b.position).Norm()
}

// GravityForce is the Newtonian pull other exerts on b, pointing from b
// toward other. Coincident bodies exert no force on each other.
func (b Body) GravityForce(other Body) dynamo.Vector {
	distance := b.Distance(other)
	if distance == 0 {
		return dynamo.Vector{}
	}
	magnitude := b.params.G * (b.mass * other.mass) / (distance * distance)
	direction := other.position.Sub(b.position).Unit()

	return direction.Scale(magnitude)
}

// Apply accelerates b by force over one tick. Position is untouched.
func (b *Body) Apply(force dynamo.Vector) {
	b.velocity = b.velocity.Add(force.Div(b.mass).Scale(b.params.Dt))
}

func (b *Body) ApplyGravity(other Body) {
	b.Apply(b.GravityForce(other))
}

// Step advances the position by the velocity. Velocity is already a
// per-tick displacement, so there is no dt factor here.
func (b *Body) Step() {
	b.position = b.position.Add(b.velocity)
}

func (b Body) Colliding(other Body) bool {
	return b.Distance(other) < b.radius+other.radius
}

// Merge combines b and other into one body. Mass and momentum are
// conserved; the result sits where the strictly heavier input was and keeps
// b's id. On equal masses b's position wins.
func (b Body) Merge(other Body) Body {
	mass := b.mass + other.mass
	position := b.position
	if other.mass > b.mass {
		position = other.position
	}
	momentum := b.velocity.Scale(b.mass).Add(other.velocity.Scale(other.mass))

	return NewBody(b.id, mass, position, momentum.Div(mass), b.params)
}

func (b Body) Momentum() dynamo.Vector {
	return b.velocity.Scale(b.mass)
}

func (b Body) KineticEnergy() float64 {
	v := b.velocity.Norm()
	return 0.5 * b.mass * v * v
}

// IsFinite reports whether the body carries no NaN or Inf state.
func (b Body) IsFinite() bool {
	return !math.IsNaN(b.mass) && !math.IsInf(b.mass, 0) && b.position.IsFinite() && b.velocity.IsFinite()
}

func (b Body) String() string {
	return fmt.Sprintf("body %d (m=%g r=%g) at %v moving %v", b.id, b.mass, b.radius, b.position, b.velocity)
}
