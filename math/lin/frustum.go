// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Plane is a plane in Hessian normal form: a point x lies on the plane
// when Norm.Dot(x) + D == 0. Points where Norm.Dot(x)+D > 0 are on the
// side the normal points toward.
type Plane struct {
	Norm *V3
	D    float64
}

// set assigns the plane's coefficients and renormalizes so Norm is unit
// length and D is scaled to match.
func (p *Plane) set(a, b, c, d float64) *Plane {
	n := &V3{a, b, c}
	l := n.Len()
	if l == 0 {
		l = 1
	}
	p.Norm = n.Scale(n, 1/l)
	p.D = d / l
	return p
}

// DistanceToPoint returns the signed distance from point v to the plane.
func (p *Plane) DistanceToPoint(v *V3) float64 { return p.Norm.Dot(v) + p.D }

// Frustum is the six-plane view volume of a projection, in the order
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the six frustum planes from view-projection matrix
// vp using the Gribb/Hartmann method: each plane is a linear combination
// of vp's rows, found directly from the clip-space half-space
// inequalities (-w <= x <= w, -w <= y <= w, -w <= z <= w) without
// decomposing vp into fov/aspect/near/far.
func NewFrustum(vp *M4) *Frustum {
	f := &Frustum{}
	f.Set(vp)
	return f
}

// Set recomputes frustum f's planes from view-projection matrix vp.
// The updated frustum f is returned.
func (f *Frustum) Set(vp *M4) *Frustum {
	m := vp
	f.Planes[0].set(m.Xw+m.Xx, m.Yw+m.Yx, m.Zw+m.Zx, m.Ww+m.Wx) // left
	f.Planes[1].set(m.Xw-m.Xx, m.Yw-m.Yx, m.Zw-m.Zx, m.Ww-m.Wx) // right
	f.Planes[2].set(m.Xw+m.Xy, m.Yw+m.Yy, m.Zw+m.Zy, m.Ww+m.Wy) // bottom
	f.Planes[3].set(m.Xw-m.Xy, m.Yw-m.Yy, m.Zw-m.Zy, m.Ww-m.Wy) // top
	f.Planes[4].set(m.Xw+m.Xz, m.Yw+m.Yz, m.Zw+m.Zz, m.Ww+m.Wz) // near
	f.Planes[5].set(m.Xw-m.Xz, m.Yw-m.Yz, m.Zw-m.Zz, m.Ww-m.Wz) // far
	return f
}

// IntersectsBox returns false only when box is entirely on the outside of
// at least one plane (the n/p-vertex test): for each plane, p1 is the
// corner most in the direction opposite the normal and p2 is the corner
// most in the direction of the normal. If both are outside (negative
// distance) the box cannot intersect the frustum. This can report a false
// positive for a box that straddles two planes' extensions without
// actually being in the frustum, which is an acceptable conservative
// culling bound.
func (f *Frustum) IntersectsBox(box *Box3) bool {
	var p1, p2 V3
	for i := range f.Planes {
		n := f.Planes[i].Norm
		if n.X > 0 {
			p1.X, p2.X = box.Min.X, box.Max.X
		} else {
			p1.X, p2.X = box.Max.X, box.Min.X
		}
		if n.Y > 0 {
			p1.Y, p2.Y = box.Min.Y, box.Max.Y
		} else {
			p1.Y, p2.Y = box.Max.Y, box.Min.Y
		}
		if n.Z > 0 {
			p1.Z, p2.Z = box.Min.Z, box.Max.Z
		} else {
			p1.Z, p2.Z = box.Max.Z, box.Min.Z
		}
		d1 := f.Planes[i].DistanceToPoint(&p1)
		d2 := f.Planes[i].DistanceToPoint(&p2)
		if d1 < 0 && d2 < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint returns true if point v is inside all six planes.
func (f *Frustum) ContainsPoint(v *V3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere returns true if the sphere at center with the given
// radius is at least partially inside the frustum.
func (f *Frustum) IntersectsSphere(center *V3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
