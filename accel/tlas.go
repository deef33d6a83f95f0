// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package accel

import (
	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// TLAS is the in-module top-level BVH over a scene's instances, built
// from their world-space bounds. Each leaf holds one instance and its
// cached BLAS; traversal transforms the ray into the instance's local
// space rather than transforming geometry into world space.
type TLAS struct {
	nodes []tlasNode
	leafs []tlasLeaf
}

type tlasLeaf struct {
	instance *bif.Instance
	blas     *BLAS
	inv      *lin.M4 // world-to-local, for ray transform.
	normalM  *lin.M3 // inverse-transpose of the instance's upper 3x3, for shading normals.
}

type tlasNode struct {
	bounds       lin.Box3
	left, right  int
	start, count int
	axis         int // split axis (0=X,1=Y,2=Z); meaningful only for interior nodes.
}

// buildTLAS builds a TLAS over scene's instances. An instance whose
// prototype has no triangles, or whose transform is singular, is skipped
// with no error: it contributes no geometry to trace against.
func buildTLAS(scene *bif.Scene, cancelled func() bool) (Accel, error) {
	t := &TLAS{}
	scene.IterInstances(func(in *bif.Instance) {
		inv, ok := lin.NewM4().AffineInv(in.Transform)
		if !ok {
			return
		}
		b, err := blasFor(in.Prototype)
		if err != nil {
			return
		}
		nm, _ := lin.NormalMatrix(in.Transform)
		t.leafs = append(t.leafs, tlasLeaf{instance: in, blas: b, inv: inv, normalM: nm})
	})
	if len(t.leafs) == 0 {
		return t, nil
	}

	bounds := make([]lin.Box3, len(t.leafs))
	centroids := make([]lin.V3, len(t.leafs))
	order := make([]int, len(t.leafs))
	for i, l := range t.leafs {
		wb := l.instance.WorldBounds()
		bounds[i] = *wb
		centroids[i] = *wb.Centroid()
		order[i] = i
	}
	t.nodes = make([]tlasNode, 0, 2*len(t.leafs))
	if _, ok := t.build(order, 0, len(order), bounds, centroids, cancelled); !ok {
		return nil, bif.ErrBuildFailed
	}
	// order now holds leafs permuted into traversal order; reorder t.leafs
	// to match so node.start/count index directly into it.
	reordered := make([]tlasLeaf, len(order))
	for i, idx := range order {
		reordered[i] = t.leafs[idx]
	}
	t.leafs = reordered
	return t, nil
}

// build recurses over order[lo:hi], returning the new node's index and
// false if cancelled stopped the build partway through. cancelled is
// polled once per partition, the same granularity medianSplit already
// recurses at, rather than once per triangle.
func (t *TLAS) build(order []int, lo, hi int, bounds []lin.Box3, centroids []lin.V3, cancelled func() bool) (int, bool) {
	if cancelled != nil && cancelled() {
		return 0, false
	}
	node := tlasNode{bounds: *lin.NewBox3()}
	for i := lo; i < hi; i++ {
		node.bounds.Union(&node.bounds, &bounds[order[i]])
	}
	nodeIdx := len(t.nodes)
	t.nodes = append(t.nodes, node)

	if hi-lo <= leafThreshold {
		t.nodes[nodeIdx].start = lo
		t.nodes[nodeIdx].count = hi - lo
		return nodeIdx, true
	}

	axis := node.bounds.MaxExtentAxis()
	key := func(i int) float64 { return axisOf(&centroids[order[i]], axis) }
	swap := func(i, j int) { order[i], order[j] = order[j], order[i] }
	mid := medianSplit(lo, hi, key, swap)
	if mid == lo || mid == hi {
		mid = lo + (hi-lo)/2
	}

	left, ok := t.build(order, lo, mid, bounds, centroids, cancelled)
	if !ok {
		return 0, false
	}
	right, ok := t.build(order, mid, hi, bounds, centroids, cancelled)
	if !ok {
		return 0, false
	}
	t.nodes[nodeIdx].left = left
	t.nodes[nodeIdx].right = right
	t.nodes[nodeIdx].axis = axis
	return nodeIdx, true
}

// Intersect implements Accel.
func (t *TLAS) Intersect(ray *lin.Ray) (HitRecord, bool) {
	if len(t.nodes) == 0 {
		return HitRecord{}, false
	}
	var (
		best    = HitRecord{}
		found   bool
		bestT   = ray.TMax
		localRy = &lin.Ray{Origin: &lin.V3{}, Dir: &lin.V3{}}
	)
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[n]
		iv := node.bounds.Slab(ray)
		if iv.Empty() || iv.Lo > bestT {
			continue
		}
		if node.count > 0 {
			for i := node.start; i < node.start+node.count; i++ {
				leaf := &t.leafs[i]
				clipped := &lin.Ray{Origin: ray.Origin, Dir: ray.Dir, TMin: ray.TMin, TMax: bestT}
				localRy.Transform(clipped, leaf.inv)
				triIdx, u, v, tt, hit := leaf.blas.intersect(localRy)
				if !hit || tt >= bestT {
					continue
				}
				bestT = tt
				found = true
				best = hitFrom(leaf, triIdx, u, v, tt, ray)
			}
			continue
		}
		near, far := node.left, node.right
		if dirOf(ray.Dir, node.axis) < 0 {
			near, far = far, near
		}
		stack = append(stack, far, near) // near on top, popped first.
	}
	return best, found
}

// hitFrom fills a HitRecord in world space from a local-space BLAS hit.
func hitFrom(leaf *tlasLeaf, triIdx int, u, v float32, t float64, ray *lin.Ray) HitRecord {
	proto := leaf.instance.Prototype
	i0, i1, i2 := proto.Indices[3*triIdx], proto.Indices[3*triIdx+1], proto.Indices[3*triIdx+2]
	v0, v1, v2 := proto.Vertices[i0], proto.Vertices[i1], proto.Vertices[i2]

	uf, vf := float64(u), float64(v)
	wf := 1 - uf - vf
	localNorm := &lin.V3{
		X: wf*v0.Norm.X + uf*v1.Norm.X + vf*v2.Norm.X,
		Y: wf*v0.Norm.Y + uf*v1.Norm.Y + vf*v2.Norm.Y,
		Z: wf*v0.Norm.Z + uf*v1.Norm.Z + vf*v2.Norm.Z,
	}
	worldNorm := &lin.V3{}
	worldNorm.MultvM(localNorm, leaf.normalM)
	worldNorm.Unit()

	return HitRecord{
		T:        t,
		Point:    *ray.At(t),
		Normal:   *worldNorm,
		U:        float32(wf)*v0.U + u*v1.U + v*v2.U,
		V:        float32(wf)*v0.V + u*v1.V + v*v2.V,
		Instance: leaf.instance,
		Material: proto.Material,
	}
}
