// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// Box3 is an axis aligned bounding box described by its smallest and
// largest corners. It is used to bound prototypes, instances, and
// acceleration structure nodes.
//
//	Min -- smallest vertex (left, bottom, back).
//	Max -- largest vertex (right, top, front).
type Box3 struct {
	Min *V3
	Max *V3
}

// NewBox3 returns an empty box: one where Min is greater than Max on every
// axis so that the first Union call establishes real bounds.
func NewBox3() *Box3 {
	return &Box3{
		Min: &V3{Large, Large, Large},
		Max: &V3{-Large, -Large, -Large},
	}
}

// NewBox3S returns a box with the given min/max corners.
func NewBox3S(minx, miny, minz, maxx, maxy, maxz float64) *Box3 {
	return &Box3{&V3{minx, miny, minz}, &V3{maxx, maxy, maxz}}
}

// Empty returns true if the box contains no points.
func (b *Box3) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Set (=) copies box a into box b. The updated box b is returned.
func (b *Box3) Set(a *Box3) *Box3 {
	b.Min.Set(a.Min)
	b.Max.Set(a.Max)
	return b
}

// ExtendPoint grows box b, if necessary, so that it contains point p.
// The updated box b is returned.
func (b *Box3) ExtendPoint(p *V3) *Box3 {
	b.Min.X, b.Min.Y, b.Min.Z = math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)
	b.Max.X, b.Max.Y, b.Max.Z = math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)
	return b
}

// Union updates box b to be the union of boxes a and c. Box b may be
// the same box as a or c. The updated box b is returned.
func (b *Box3) Union(a, c *Box3) *Box3 {
	minx, miny, minz := math.Min(a.Min.X, c.Min.X), math.Min(a.Min.Y, c.Min.Y), math.Min(a.Min.Z, c.Min.Z)
	maxx, maxy, maxz := math.Max(a.Max.X, c.Max.X), math.Max(a.Max.Y, c.Max.Y), math.Max(a.Max.Z, c.Max.Z)
	b.Min.X, b.Min.Y, b.Min.Z = minx, miny, minz
	b.Max.X, b.Max.Y, b.Max.Z = maxx, maxy, maxz
	return b
}

// Contains returns true if point p lies within box b, inclusive of the
// boundary.
func (b *Box3) Contains(p *V3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps returns true if boxes b and a intersect.
func (b *Box3) Overlaps(a *Box3) bool {
	return b.Max.X >= a.Min.X && b.Min.X <= a.Max.X &&
		b.Max.Y >= a.Min.Y && b.Min.Y <= a.Max.Y &&
		b.Max.Z >= a.Min.Z && b.Min.Z <= a.Max.Z
}

// Centroid returns the center point of box b.
func (b *Box3) Centroid() *V3 {
	return &V3{
		(b.Min.X + b.Max.X) * 0.5,
		(b.Min.Y + b.Max.Y) * 0.5,
		(b.Min.Z + b.Max.Z) * 0.5,
	}
}

// Extent returns the box's size along each axis.
func (b *Box3) Extent() (x, y, z float64) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z
}

// MaxExtentAxis returns the axis (0=X, 1=Y, 2=Z) along which the box is
// largest. Used to choose the BVH split axis.
func (b *Box3) MaxExtentAxis() int {
	ex, ey, ez := b.Extent()
	axis := 0
	largest := ex
	if ey > largest {
		axis, largest = 1, ey
	}
	if ez > largest {
		axis = 2
	}
	return axis
}

// SurfaceArea returns the box's surface area. Unused by the median-split
// builder but kept for future SAH experiments.
func (b *Box3) SurfaceArea() float64 {
	x, y, z := b.Extent()
	if x < 0 || y < 0 || z < 0 {
		return 0
	}
	return 2 * (x*y + y*z + z*x)
}

// Transform updates box b to be the tight axis-aligned hull of box a's
// eight corners transformed as points through matrix m. Transforming only
// (Min, Max) is incorrect under rotation and must never be used instead.
// The updated box b is returned.
func (b *Box3) Transform(a *Box3, m *M4) *Box3 {
	corners := [8]*V3{
		{a.Min.X, a.Min.Y, a.Min.Z}, {a.Max.X, a.Min.Y, a.Min.Z},
		{a.Min.X, a.Max.Y, a.Min.Z}, {a.Max.X, a.Max.Y, a.Min.Z},
		{a.Min.X, a.Min.Y, a.Max.Z}, {a.Max.X, a.Min.Y, a.Max.Z},
		{a.Min.X, a.Max.Y, a.Max.Z}, {a.Max.X, a.Max.Y, a.Max.Z},
	}
	out := NewBox3()
	v := &V4{}
	for _, c := range corners {
		v.SetS(c.X, c.Y, c.Z, 1) // w=1: point transform, translation applies.
		v.MultvM(v, m)
		out.ExtendPoint(&V3{v.X, v.Y, v.Z})
	}
	b.Set(out)
	return b
}

// Slab performs the reciprocal-direction ray/box intersection test,
// returning the entry/exit interval clipped against the ray's current
// (TMin, TMax] interval. The returned interval is empty (Lo > Hi) on a
// miss. Handles near-axis-aligned rays by relying on IEEE-754 divide by
// zero producing +/-Inf rather than panicking.
func (b *Box3) Slab(r *Ray) Interval {
	lo, hi := r.TMin, r.TMax
	ox, oy, oz := r.Origin.X, r.Origin.Y, r.Origin.Z
	dx, dy, dz := r.Dir.X, r.Dir.Y, r.Dir.Z

	if iv := slabAxis(ox, dx, b.Min.X, b.Max.X, lo, hi); iv.Lo > iv.Hi {
		return Interval{1, 0}
	} else {
		lo, hi = iv.Lo, iv.Hi
	}
	if iv := slabAxis(oy, dy, b.Min.Y, b.Max.Y, lo, hi); iv.Lo > iv.Hi {
		return Interval{1, 0}
	} else {
		lo, hi = iv.Lo, iv.Hi
	}
	if iv := slabAxis(oz, dz, b.Min.Z, b.Max.Z, lo, hi); iv.Lo > iv.Hi {
		return Interval{1, 0}
	} else {
		lo, hi = iv.Lo, iv.Hi
	}
	return Interval{lo, hi}
}

// slabAxis clips (lo, hi) against one axis' slab. Division by a zero
// direction component yields +/-Inf, which correctly widens or empties the
// interval without a branch for the axis-aligned special case.
func slabAxis(origin, dir, min, max, lo, hi float64) Interval {
	inv := 1 / dir
	t0 := (min - origin) * inv
	t1 := (max - origin) * inv
	if inv < 0 {
		t0, t1 = t1, t0
	}
	if t0 > lo {
		lo = t0
	}
	if t1 < hi {
		hi = t1
	}
	return Interval{lo, hi}
}
