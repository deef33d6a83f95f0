// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestRayAt(t *testing.T) {
	r := NewRay(&V3{1, 2, 3}, &V3{0, 0, 1})
	p := r.At(5)
	if !p.Aeq(&V3{1, 2, 8}) {
		t.Errorf("At wrong: got %s", p.Dump())
	}
}

// TestRayTransform checks that a ray's origin moves with translation but
// its direction does not, matching how a world-space ray is carried into
// a prototype's local space.
func TestRayTransform(t *testing.T) {
	m := NewM4I()
	m.TranslateTM(1, 0, 0)
	world := NewRay(&V3{0, 0, 0}, &V3{0, 0, 1})
	local := &Ray{Origin: &V3{}, Dir: &V3{}}
	local.Transform(world, m)
	if !local.Origin.Aeq(&V3{1, 0, 0}) {
		t.Errorf("origin should translate: got %s", local.Origin.Dump())
	}
	if !local.Dir.Aeq(&V3{0, 0, 1}) {
		t.Errorf("direction should not translate: got %s", local.Dir.Dump())
	}
}
