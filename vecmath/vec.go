// Package vecmath provides the 3D vector, rotation and hashing kernel used by
// every force and collision computation in the simulation.
package vecmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D vector. It shares its layout with gonum's r3.Vec so the r3
// algebra can be reused through a plain conversion.
type Vec r3.Vec

// Zero is the null vector.
var Zero = Vec{}

// Axis unit vectors.
var (
	UnitX = Vec{X: 1}
	UnitY = Vec{Y: 1}
	UnitZ = Vec{Z: 1}
)

// V is shorthand for Vec{X: x, Y: y, Z: z}.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

func (v Vec) r3() r3.Vec { return r3.Vec(v) }

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec(r3.Add(v.r3(), o.r3())) }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec(r3.Sub(v.r3(), o.r3())) }

// Scale returns v * f.
func (v Vec) Scale(f float64) Vec { return Vec(r3.Scale(f, v.r3())) }

// Div returns v / d.
func (v Vec) Div(d float64) Vec { return Vec{X: v.X / d, Y: v.Y / d, Z: v.Z / d} }

// DivVec divides componentwise.
func (v Vec) DivVec(o Vec) Vec { return Vec{X: v.X / o.X, Y: v.Y / o.Y, Z: v.Z / o.Z} }

// AddScalar adds s to every component.
func (v Vec) AddScalar(s float64) Vec { return Vec{X: v.X + s, Y: v.Y + s, Z: v.Z + s} }

// SubScalar subtracts s from every component.
func (v Vec) SubScalar(s float64) Vec { return Vec{X: v.X - s, Y: v.Y - s, Z: v.Z - s} }

// Neg returns -v.
func (v Vec) Neg() Vec { return Vec{X: -v.X, Y: -v.Y, Z: -v.Z} }

// Dot returns the scalar product.
func (v Vec) Dot(o Vec) float64 { return r3.Dot(v.r3(), o.r3()) }

// Cross returns the vector product v × o.
func (v Vec) Cross(o Vec) Vec { return Vec(r3.Cross(v.r3(), o.r3())) }

// Len returns the Euclidean length.
func (v Vec) Len() float64 { return r3.Norm(v.r3()) }

// SqLen returns the squared length.
func (v Vec) SqLen() float64 { return r3.Norm2(v.r3()) }

// IsZero reports whether all components are exactly zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Equal reports exact componentwise equality.
func (v Vec) Equal(o Vec) bool { return v == o }

// IsFinite reports whether no component is NaN or infinite.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// HasNaN reports whether any component is NaN.
func (v Vec) HasNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Componentwise comparisons against a scalar.

func (v Vec) AllGE(s float64) bool { return v.X >= s && v.Y >= s && v.Z >= s }
func (v Vec) AllLE(s float64) bool { return v.X <= s && v.Y <= s && v.Z <= s }
func (v Vec) AllGT(s float64) bool { return v.X > s && v.Y > s && v.Z > s }
func (v Vec) AllLT(s float64) bool { return v.X < s && v.Y < s && v.Z < s }

// Normalized returns v scaled to unit length.
//
// The length of v must be non-zero. A zero vector has no direction and
// Normalized panics rather than returning NaN components; callers that can
// legitimately see a zero vector use Unit instead.
func (v Vec) Normalized() Vec {
	l := v.Len()
	if l == 0 {
		panic(fmt.Sprintf("vecmath: Normalized called on zero-length vector %v", v))
	}
	return v.Div(l)
}

// Normalize scales v to unit length in place. Same precondition as Normalized.
func (v *Vec) Normalize() {
	*v = v.Normalized()
}

// Unit returns the unit vector along v and false if v has zero length.
func (v Vec) Unit() (Vec, bool) {
	l := v.Len()
	if l == 0 {
		return Zero, false
	}
	return v.Div(l), true
}

// Ortho returns a vector orthogonal to v (not normalized).
func (v Vec) Ortho() Vec {
	if v.X == 0 && v.Y == 0 {
		return UnitY
	}
	return Vec{X: -v.Y, Y: v.X}
}

// OrthoTo returns a vector orthogonal to both v and o, falling back to
// v.Ortho() when the two are (nearly) colinear.
func (v Vec) OrthoTo(o Vec) Vec {
	if o.Sub(v).SqLen() > 1e-9 {
		c := v.Cross(o)
		if c.SqLen() > 1e-12 {
			return c
		}
	}
	return v.Ortho()
}

// String formats v as (x, y, z).
func (v Vec) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
