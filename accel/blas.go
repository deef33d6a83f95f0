// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package accel

import (
	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// BLAS is a bottom-level BVH over a single prototype's triangles, built
// once in the prototype's local space and shared by every instance that
// references it.
type BLAS struct {
	proto *bif.Prototype
	nodes []blasNode
	tris  []int // triangle index (into proto.Indices/3), reordered by build.
}

type blasNode struct {
	bounds      lin.Box3
	left, right int // node indices; right == 0 && left == 0 marks a leaf iff count > 0.
	start, count int // leaf: tris[start:start+count]. interior: count == 0.
	axis        int // split axis (0=X,1=Y,2=Z); meaningful only for interior nodes.
}

// buildBLAS constructs a local-space BVH over p's triangles using a
// median-of-centroid-on-longest-axis split, bottoming out at leafThreshold
// triangles per leaf.
func buildBLAS(p *bif.Prototype) (*BLAS, error) {
	triCount := len(p.Indices) / 3
	if triCount == 0 {
		return nil, bif.ErrInvalidGeometry
	}
	b := &BLAS{proto: p, tris: make([]int, triCount)}
	centroids := make([]lin.V3, triCount)
	bounds := make([]lin.Box3, triCount)
	for i := 0; i < triCount; i++ {
		b.tris[i] = i
		a, c, d := p.Triangle(i)
		box := lin.NewBox3()
		box.ExtendPoint(&a)
		box.ExtendPoint(&c)
		box.ExtendPoint(&d)
		bounds[i] = *box
		centroids[i] = *box.Centroid()
	}
	b.nodes = make([]blasNode, 0, 2*triCount)
	b.build(0, triCount, bounds, centroids)
	return b, nil
}

// build recursively partitions b.tris[lo:hi], appending nodes, and
// returns the index of the node it created.
func (b *BLAS) build(lo, hi int, bounds []lin.Box3, centroids []lin.V3) int {
	node := blasNode{bounds: *lin.NewBox3()}
	for i := lo; i < hi; i++ {
		node.bounds.Union(&node.bounds, &bounds[b.tris[i]])
	}
	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, node)

	if hi-lo <= leafThreshold {
		b.nodes[nodeIdx].start = lo
		b.nodes[nodeIdx].count = hi - lo
		return nodeIdx
	}

	axis := node.bounds.MaxExtentAxis()
	key := func(i int) float64 { return axisOf(&centroids[b.tris[i]], axis) }
	swap := func(i, j int) { b.tris[i], b.tris[j] = b.tris[j], b.tris[i] }
	mid := medianSplit(lo, hi, key, swap)
	if mid == lo || mid == hi {
		mid = lo + (hi-lo)/2 // degenerate centroids (coplanar triangles); force an even split.
	}

	left := b.build(lo, mid, bounds, centroids)
	right := b.build(mid, hi, bounds, centroids)
	b.nodes[nodeIdx].left = left
	b.nodes[nodeIdx].right = right
	b.nodes[nodeIdx].axis = axis
	return nodeIdx
}

func axisOf(v *lin.V3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// dirOf is axisOf for a ray direction: its sign against a node's split
// axis decides which child the ray reaches first.
func dirOf(v *lin.V3, axis int) float64 { return axisOf(v, axis) }

// intersect walks the BLAS in local space, returning the closest hit (as
// a triangle index and barycentric u,v) and the ray parameter t.
func (b *BLAS) intersect(ray *lin.Ray) (triIdx int, u, v float32, t float64, hit bool) {
	if len(b.nodes) == 0 {
		return 0, 0, 0, 0, false
	}
	best := ray.TMax
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.nodes[n]
		iv := node.bounds.Slab(ray)
		if iv.Empty() || iv.Lo > best {
			continue
		}
		if node.count > 0 {
			for i := node.start; i < node.start+node.count; i++ {
				ti := b.tris[i]
				a, c, d := b.proto.Triangle(ti)
				if tt, tu, tv, ok := intersectTriangle(ray, &a, &c, &d); ok && tt < best && tt >= ray.TMin {
					best = tt
					triIdx, u, v, t, hit = ti, tu, tv, tt, true
				}
			}
			continue
		}
		near, far := node.left, node.right
		if dirOf(ray.Dir, node.axis) < 0 {
			near, far = far, near
		}
		stack = append(stack, far, near) // near on top, popped first.
	}
	return
}

// intersectTriangle is the Möller–Trumbore ray/triangle test.
func intersectTriangle(ray *lin.Ray, a, b, c *lin.V3) (t float64, u, v float32, ok bool) {
	e1, e2, pvec, tvec, qvec := &lin.V3{}, &lin.V3{}, &lin.V3{}, &lin.V3{}, &lin.V3{}
	e1.Sub(b, a)
	e2.Sub(c, a)
	pvec.Cross(ray.Dir, e2)
	det := e1.Dot(pvec)
	if det > -1e-12 && det < 1e-12 {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det
	tvec.Sub(ray.Origin, a)
	fu := tvec.Dot(pvec) * invDet
	if fu < 0 || fu > 1 {
		return 0, 0, 0, false
	}
	qvec.Cross(tvec, e1)
	fv := ray.Dir.Dot(qvec) * invDet
	if fv < 0 || fu+fv > 1 {
		return 0, 0, 0, false
	}
	ft := e2.Dot(qvec) * invDet
	if ft < ray.TMin || ft > ray.TMax {
		return 0, 0, 0, false
	}
	return ft, float32(fu), float32(fv), true
}
