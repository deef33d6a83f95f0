// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Vector holds the 3-element point/direction math the scene graph and
// renderers build everything else on: instance positions, triangle
// vertices and normals, ray origins and directions, camera basis vectors.
// V4 exists only as the homogeneous form (w=1 point, w=0 direction) used
// to carry a V3 through an M4 so translation can be included or excluded
// without a second code path.

import (
	"log"
	"math"
)

// V3 is a 3 element vector, used for points, directions, and colors
// (X=R, Y=G, Z=B) throughout this module.
type V3 struct {
	X float64
	Y float64
	Z float64
}

// V4 is the homogeneous form of V3: W=1 for a point (translation applies
// under a matrix multiply), W=0 for a direction (translation does not).
type V4 struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Eq (==) returns true if each element in v has the same value as the
// corresponding element in a.
func (v *V3) Eq(a *V3) bool {
	return v.Z == a.Z && v.Y == a.Y && v.X == a.X
}

// Aeq (~=) almost-equals returns true if all the elements in v have
// essentially the same value as the corresponding elements in a. Used
// where a direct comparison is unlikely to return true due to floats.
func (v *V3) Aeq(a *V3) bool {
	return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) && Aeq(v.Z, a.Z)
}

// AeqZ (~=) almost equals zero returns true if the square length of v is
// close enough to zero that it makes no difference.
func (v *V3) AeqZ() bool { return v.Dot(v) < Epsilon }

// GetS returns the float64 values of the vector.
func (v *V3) GetS() (x, y, z float64) { return v.X, v.Y, v.Z }

// SetS (=) sets the vector elements to the given values. The updated
// vector v is returned.
func (v *V3) SetS(x, y, z float64) *V3 {
	v.X, v.Y, v.Z = x, y, z
	return v
}

// SetS (=) sets the vector elements to the given values, w included. The
// updated vector v is returned.
func (v *V4) SetS(x, y, z, w float64) *V4 {
	v.X, v.Y, v.Z, v.W = x, y, z, w
	return v
}

// Set (=, copy, clone) sets the elements of v to the same values as the
// elements of a. The updated vector v is returned.
func (v *V3) Set(a *V3) *V3 {
	v.X, v.Y, v.Z = a.X, a.Y, a.Z
	return v
}

// Min updates v to be the minimum of the corresponding elements from
// either a or b. The updated vector v is returned.
func (v *V3) Min(a, b *V3) *V3 {
	v.X, v.Y, v.Z = math.Min(b.X, a.X), math.Min(b.Y, a.Y), math.Min(b.Z, a.Z)
	return v
}

// Max updates v to be the maximum of the corresponding elements from
// either a or b. The updated vector v is returned.
func (v *V3) Max(a, b *V3) *V3 {
	v.X, v.Y, v.Z = math.Max(b.X, a.X), math.Max(b.Y, a.Y), math.Max(b.Z, a.Z)
	return v
}

// Abs updates v in place to have the absolute value of its own elements.
func (v *V3) Abs() *V3 {
	v.X, v.Y, v.Z = math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	return v
}

// Neg (-) sets v to be the negative of vector a. Vector v may be used as
// the input parameter. The updated vector v is returned.
func (v *V3) Neg(a *V3) *V3 {
	v.X, v.Y, v.Z = -a.X, -a.Y, -a.Z
	return v
}

// Add (+) adds vectors a and b storing the result in v. Vector v may be
// used as one or both of the parameters, so v.Add(v, b) reads as (+=).
// The updated vector v is returned.
func (v *V3) Add(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X+b.X, a.Y+b.Y, a.Z+b.Z
	return v
}

// Sub (-) subtracts b from a storing the result in v. Vector v may be
// used as one or both of the parameters, so v.Sub(v, b) reads as (-=).
// The updated vector v is returned.
func (v *V3) Sub(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return v
}

// Mult (*) multiplies the elements of a and b storing the result in v.
// Vector v may be used as one or both of the parameters.
func (v *V3) Mult(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X*b.X, a.Y*b.Y, a.Z*b.Z
	return v
}

// Scale (*=) updates v to be vector a with each element multiplied by the
// scalar s. Vector v may be used as the input vector. The updated vector
// v is returned.
func (v *V3) Scale(a *V3, s float64) *V3 {
	v.X, v.Y, v.Z = a.X*s, a.Y*s, a.Z*s
	return v
}

// Div (/= inverse-scale) divides each element in v by the given scalar
// value. The updated vector v is returned. Vector v is unchanged if s is
// zero.
func (v *V3) Div(s float64) *V3 {
	if s != 0 {
		inv := 1 / s
		v.X, v.Y, v.Z = v.X*inv, v.Y*inv, v.Z*inv
	}
	return v
}

// Dot vector v with input vector a. Both vectors v and a are unchanged.
func (v *V3) Dot(a *V3) float64 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Len returns the length of vector v. The calling vector v is unchanged.
func (v *V3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// LenSqr returns the length of vector v squared. The calling vector v is
// unchanged.
func (v *V3) LenSqr() float64 { return v.Dot(v) }

// Dist returns the distance between vector end-points v and a. Both
// vectors (points) v and a are unchanged.
func (v *V3) Dist(a *V3) float64 { return math.Sqrt(v.DistSqr(a)) }

// DistSqr returns the distance squared between vector end-points v and a.
// Both vectors (points) v and a are unchanged.
func (v *V3) DistSqr(a *V3) float64 {
	dx, dy, dz := a.X-v.X, a.Y-v.Y, a.Z-v.Z
	return dx*dx + dy*dy + dz*dz
}

// Ang returns the angle in radians between vector v and input vector a.
// Ang returns 0 if the magnitude of either vector is 0.
func (v *V3) Ang(a *V3) float64 {
	magnitude := math.Sqrt(v.Dot(v) * a.Dot(a))
	if magnitude != 0 {
		return math.Acos(v.Dot(a) / magnitude)
	}
	log.Printf("lin: V3.Ang division by zero")
	return 0
}

// Unit updates v such that its length is 1. Calling vector v is unchanged
// if its length is zero. The updated vector v is returned.
func (v *V3) Unit() *V3 {
	length := v.Len()
	if length != 0 {
		return v.Div(length)
	}
	return v
}

// Cross updates v to be the cross product of a and b: a vector
// perpendicular to both inputs. Input vectors a and b are unchanged.
// Vector v may be used as either input parameter. The updated vector v
// is returned.
func (v *V3) Cross(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.Y*b.Z-a.Z*b.Y, a.Z*b.X-a.X*b.Z, a.X*b.Y-a.Y*b.X
	return v
}

// Lerp updates v to be a fraction of the distance (linear interpolation)
// between a and b. The fraction is expected to be between 0 and 1, but
// is not checked. Vector v may be used as one of the parameters.
func (v *V3) Lerp(a, b *V3, fraction float64) *V3 {
	v.X = (b.X-a.X)*fraction + a.X
	v.Y = (b.Y-a.Y)*fraction + a.Y
	v.Z = (b.Z-a.Z)*fraction + a.Z
	return v
}

// vector operations
// ============================================================================
// vector-matrix operations

// MultvM updates v to be the multiplication of row vector rv and matrix
// m. Vector v may be used as the input vector rv. The updated vector v
// is returned.
//
//	                  [ Xx Xy Xz ]
//	[ vx vy vz ] x [ Yx Yy Yz ] = [ vx' vy' vz' ]
//	                  [ Zx Zy Zz ]
func (v *V3) MultvM(rv *V3, m *M3) *V3 {
	x := rv.X*m.Xx + rv.Y*m.Yx + rv.Z*m.Zx
	y := rv.X*m.Xy + rv.Y*m.Yy + rv.Z*m.Zy
	z := rv.X*m.Xz + rv.Y*m.Yz + rv.Z*m.Zz
	v.X, v.Y, v.Z = x, y, z
	return v
}

// MultvM updates v to be the multiplication of row vector rv and matrix
// m. Same behaviour as V3.MultvM, carried through in homogeneous form so
// the caller controls whether translation applies via rv.W.
func (v *V4) MultvM(rv *V4, m *M4) *V4 {
	x := rv.X*m.Xx + rv.Y*m.Yx + rv.Z*m.Zx + rv.W*m.Wx
	y := rv.X*m.Xy + rv.Y*m.Yy + rv.Z*m.Zy + rv.W*m.Wy
	z := rv.X*m.Xz + rv.Y*m.Yz + rv.Z*m.Zz + rv.W*m.Wz
	w := rv.X*m.Xw + rv.Y*m.Yw + rv.Z*m.Zw + rv.W*m.Ww
	v.X, v.Y, v.Z, v.W = x, y, z, w
	return v
}

// vector-matrix operations
// ============================================================================
// convenience functions for allocating vectors. Nothing else should allocate.

// NewV3 creates a new, all zero, 3D vector.
func NewV3() *V3 { return &V3{} }

// NewV3S creates a new 3D vector using the given scalars.
func NewV3S(x, y, z float64) *V3 { return &V3{x, y, z} }
