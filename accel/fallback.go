// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package accel

import (
	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// Fallback is a flat per-instance loop, built only through NewFallback:
// New never builds one itself, and an empty scene gets an empty TLAS rather than
// a Fallback. It still builds and reuses a BLAS per
// prototype, so the cost difference against a TLAS is purely the lack of
// a top-level culling structure, not per-triangle performance.
type Fallback struct {
	leafs []tlasLeaf
}

// NewFallback builds a Fallback accelerator over scene's instances.
func NewFallback(scene *bif.Scene) (*Fallback, error) {
	f := &Fallback{}
	var buildErr error
	scene.IterInstances(func(in *bif.Instance) {
		if buildErr != nil {
			return
		}
		inv, ok := lin.NewM4().AffineInv(in.Transform)
		if !ok {
			return
		}
		b, err := blasFor(in.Prototype)
		if err != nil {
			buildErr = err
			return
		}
		nm, _ := lin.NormalMatrix(in.Transform)
		f.leafs = append(f.leafs, tlasLeaf{instance: in, blas: b, inv: inv, normalM: nm})
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return f, nil
}

// Intersect implements Accel by testing every instance in turn.
func (f *Fallback) Intersect(ray *lin.Ray) (HitRecord, bool) {
	var (
		best    HitRecord
		found   bool
		bestT   = ray.TMax
		localRy = &lin.Ray{Origin: &lin.V3{}, Dir: &lin.V3{}}
	)
	for i := range f.leafs {
		leaf := &f.leafs[i]
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
	return best, found
}
