// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// scratch holds the per-frame culling/LOD workspace: the surviving
// instances and their squared camera distance, kept parallel so the LOD
// partition (lod.go) can reorder both in lockstep. It is owned by a
// Renderer and reused frame to frame rather than reallocated, matching
// spec.md §4.5's "preallocated and reused across frames" requirement for
// the culling workspace.
type scratch struct {
	instances []*bif.Instance
	distSqr   []float64
}

func newScratch() *scratch {
	return &scratch{}
}

// reset truncates the scratch slices to zero length without releasing
// their backing arrays, so repeated frames at a stable instance count
// never allocate.
func (s *scratch) reset() {
	s.instances = s.instances[:0]
	s.distSqr = s.distSqr[:0]
}

// cull walks every instance in scene, testing its world-space AABB
// against frustum, and appends the survivors (with their squared distance
// to eye) into the reused scratch slices.
func (s *scratch) cull(scene *bif.Scene, frustum *lin.Frustum, eye *lin.V3) {
	s.reset()
	scene.IterInstances(func(in *bif.Instance) {
		wb := in.WorldBounds()
		if !frustum.IntersectsBox(wb) {
			return
		}
		c := wb.Centroid()
		dx, dy, dz := c.X-eye.X, c.Y-eye.Y, c.Z-eye.Z
		s.instances = append(s.instances, in)
		s.distSqr = append(s.distSqr, dx*dx+dy*dy+dz*dz)
	})
}

// swap exchanges elements i and j in both parallel slices, the primitive
// the LOD partition's quickselect needs.
func (s *scratch) swap(i, j int) {
	s.instances[i], s.instances[j] = s.instances[j], s.instances[i]
	s.distSqr[i], s.distSqr[j] = s.distSqr[j], s.distSqr[i]
}
