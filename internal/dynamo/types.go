package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector is a copied-by-value coordinate tuple. The 2D regime keeps Z at zero.
type Vector r3.Vec

// Point is a position in simulation space.
type Point = Vector

func Vec2(x, y float64) Vector    { return Vector{X: x, Y: y} }
func Vec3(x, y, z float64) Vector { return Vector{X: x, Y: y, Z: z} }

func (v Vector) Add(o Vector) Vector     { return Vector(r3.Add(r3.Vec(v), r3.Vec(o))) }
func (v Vector) Sub(o Vector) Vector     { return Vector(r3.Sub(r3.Vec(v), r3.Vec(o))) }
func (v Vector) Scale(f float64) Vector  { return Vector(r3.Scale(f, r3.Vec(v))) }
func (v Vector) Div(f float64) Vector    { return Vector(r3.Scale(1/f, r3.Vec(v))) }
func (v Vector) Dot(o Vector) float64    { return r3.Dot(r3.Vec(v), r3.Vec(o)) }
func (v Vector) Norm() float64           { return r3.Norm(r3.Vec(v)) }
func (v Vector) IsZero() bool            { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vector) String() string          { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }
func (v Vector) Components() [3]float64  { return [3]float64{v.X, v.Y, v.Z} }
func (v Vector) Equal(o Vector) bool     { return v.X == o.X && v.Y == o.Y && v.Z == o.Z }

// Unit returns the unit vector along v. The zero vector maps to itself
// rather than to NaN.
func (v Vector) Unit() Vector {
	if v.IsZero() {
		return Vector{}
	}
	return Vector(r3.Unit(r3.Vec(v)))
}

// IsFinite reports whether no component is NaN or Inf.
func (v Vector) IsFinite() bool {
	for _, c := range v.Components() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Project drops the axes above dim. dim 2 zeroes Z; anything else is a no-op.
func (v Vector) Project(dim int) Vector {
	if dim == 2 {
		v.Z = 0
	}
	return v
}

// Params holds the fixed simulation constants. They are configuration, not
// physics: the radius formula in particular is tuned for display.
type Params struct {
	G               float64
	Dt              float64
	RadiusMassScale float64
	RadiusDivisor   float64
	Dimensions      int
}

const (
	DefaultG               = 6.6743015e-11
	DefaultDt              = 1e-13
	DefaultRadiusMassScale = 10_000
	DefaultRadiusDivisor   = 500
	DefaultDimensions      = 3
)

func DefaultParams() Params {
	return Params{
		G:               DefaultG,
		Dt:              DefaultDt,
		RadiusMassScale: DefaultRadiusMassScale,
		RadiusDivisor:   DefaultRadiusDivisor,
		Dimensions:      DefaultDimensions,
	}
}

func (p Params) Validate() error {
	if !(p.G > 0) || math.IsInf(p.G, 0) {
		return fmt.Errorf("%w: G must be positive, got %g", ErrParameterBounds, p.G)
	}
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, p.Dt)
	}
	if !(p.RadiusMassScale > 0) {
		return fmt.Errorf("%w: radius mass scale must be positive, got %g", ErrParameterBounds, p.RadiusMassScale)
	}
	if !(p.RadiusDivisor > 0) || math.IsInf(p.RadiusDivisor, 0) {
		return fmt.Errorf("%w: radius divisor must be positive, got %g", ErrParameterBounds, p.RadiusDivisor)
	}
	if p.Dimensions != 2 && p.Dimensions != 3 {
		return fmt.Errorf("%w: got %d", ErrDimensions, p.Dimensions)
	}
	return nil
}
