package vecmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is an axis-angle rotation of Theta radians around the unit axis N.
type Rotation struct {
	N     Vec
	Theta float64
}

// Identity is the null rotation. Its axis is arbitrary but normalized.
var Identity = Rotation{N: UnitY}

// Basis is a pair of axes describing an orientation frame.
type Basis struct {
	X, Y Vec
}

// DefaultBasis is the world frame.
var DefaultBasis = Basis{X: UnitX, Y: UnitY}

// Quat returns the unit quaternion of r.
func (r Rotation) Quat() quat.Number {
	s, c := math.Sincos(r.Theta * 0.5)
	n := r.N
	if u, ok := n.Unit(); ok {
		n = u
	}
	return quat.Number{Real: c, Imag: n.X * s, Jmag: n.Y * s, Kmag: n.Z * s}
}

// Inverted returns the rotation undoing r.
func (r Rotation) Inverted() Rotation {
	return Rotation{N: r.N, Theta: -r.Theta}
}

// FromQuat converts a quaternion to axis-angle. q is normalized first; a
// quaternion with no vector part yields the identity.
func FromQuat(q quat.Number) Rotation {
	if a := quat.Abs(q); a > 0 {
		q = quat.Scale(1/a, q)
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	s := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if s < 1e-15 {
		return Identity
	}
	return Rotation{
		N:     Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s},
		Theta: 2 * math.Atan2(s, q.Real),
	}
}

// Rotated returns v rotated by angle radians around axis.
func (v Vec) Rotated(angle float64, axis Vec) Vec {
	if angle == 0 || axis.IsZero() {
		return v
	}
	return Vec(r3.NewRotation(angle, r3.Vec(axis)).Rotate(r3.Vec(v)))
}

// RotatedBy returns v rotated by r.
func (v Vec) RotatedBy(r Rotation) Vec {
	return v.Rotated(r.Theta, r.N)
}

// RotateRotation rotates the axis of start by offset, keeping its angle.
func RotateRotation(start, offset Rotation) Rotation {
	return Rotation{N: start.N.RotatedBy(offset), Theta: start.Theta}
}

// AddRotations composes r0 then r1.
func AddRotations(r0, r1 Rotation) Rotation {
	return FromQuat(quat.Mul(r1.Quat(), r0.Quat()))
}

// AddAsAngularVelocity folds the rotation vector w (axis * angle, typically
// angular velocity times dt) into r.
func AddAsAngularVelocity(w Vec, r Rotation) Rotation {
	dTheta := w.Len()
	if dTheta == 0 {
		return r
	}
	return AddRotations(r, Rotation{N: w.Div(dTheta), Theta: dTheta})
}

// RotationBetween returns the rotation taking the direction v0 onto v1. Both
// are expected to be unit vectors.
func RotationBetween(v0, v1 Vec) Rotation {
	theta := math.Acos(math.Min(1, math.Max(-1, v0.Dot(v1))))
	n := v0.Cross(v1)
	if n.SqLen() == 0 {
		if theta == 0 {
			return Identity
		}
		n = v0.Ortho()
	}
	u, _ := n.Unit()
	return Rotation{N: u, Theta: theta}
}

// quatBetween is the unit quaternion rotating a onto b.
func quatBetween(a, b Vec) quat.Number {
	return RotationBetween(a, b).Quat()
}

// RotationBetweenBases returns the rotation that brings b0 onto b1: X0 is
// first aligned on X1, then the rotated Y0 is swung onto Y1.
func RotationBetweenBases(b0, b1 Basis) Rotation {
	x0, x1 := b0.X.Normalized(), b1.X.Normalized()
	q0 := quatBetween(x0, x1)
	yTmp := Vec(r3.Rotation(q0).Rotate(r3.Vec(b0.Y))).Normalized()
	q := quat.Mul(quatBetween(yTmp, b1.Y.Normalized()), q0)
	return FromQuat(q)
}
