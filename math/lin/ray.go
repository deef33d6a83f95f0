// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Ray is a parametric ray Origin + t*Dir, valid over the half-open
// parameter interval (TMin, TMax]. Dir is not required to be unit length;
// callers that need a unit direction normalize before constructing the ray.
type Ray struct {
	Origin *V3
	Dir    *V3
	TMin   float64
	TMax   float64
}

// NewRay returns a ray with the conventional epsilon/large parameter
// bounds, guarding against self-intersection at the origin.
func NewRay(origin, dir *V3) *Ray {
	return &Ray{Origin: origin, Dir: dir, TMin: 1e-4, TMax: Large}
}

// At returns the point Origin + t*Dir.
func (r *Ray) At(t float64) *V3 {
	return &V3{
		r.Origin.X + t*r.Dir.X,
		r.Origin.Y + t*r.Dir.Y,
		r.Origin.Z + t*r.Dir.Z,
	}
}

// Transform updates ray r to be ray a carried through matrix m: the origin
// as a point (w=1) and the direction as a vector (w=0), so translation
// affects the origin but not the direction. Used to bring a world-space
// ray into a prototype's local space via the instance's inverse transform.
// The updated ray r is returned.
func (r *Ray) Transform(a *Ray, m *M4) *Ray {
	op := &V4{a.Origin.X, a.Origin.Y, a.Origin.Z, 1}
	dp := &V4{a.Dir.X, a.Dir.Y, a.Dir.Z, 0}
	op.MultvM(op, m)
	dp.MultvM(dp, m)
	if r.Origin == nil {
		r.Origin = &V3{}
	}
	if r.Dir == nil {
		r.Dir = &V3{}
	}
	r.Origin.X, r.Origin.Y, r.Origin.Z = op.X, op.Y, op.Z
	r.Dir.X, r.Dir.Y, r.Dir.Z = dp.X, dp.Y, dp.Z
	r.TMin, r.TMax = a.TMin, a.TMax
	return r
}
