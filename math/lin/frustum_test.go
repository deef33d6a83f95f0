// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

// testViewProj places the camera at world (0, 0, 5) looking toward the
// origin, i.e. down -Z in view space, matching Persp's Zw = -1 convention.
func testViewProj() *M4 {
	vm := NewM4I()
	vm.TranslateTM(0, 0, -5)
	pm := NewM4I()
	pm.Persp(60, 1, 0.1, 100)
	vp := NewM4()
	vp.Mult(vm, pm)
	return vp
}

func TestFrustumContainsOrigin(t *testing.T) {
	f := NewFrustum(testViewProj())
	// the box around the world origin sits in front of the shifted camera.
	box := NewBox3S(-0.5, -0.5, -0.5, 0.5, 0.5, 0.5)
	if !f.IntersectsBox(box) {
		t.Error("expected box at scene origin to be inside frustum")
	}
}

func TestFrustumRejectsFarAway(t *testing.T) {
	f := NewFrustum(testViewProj())
	box := NewBox3S(1000, 1000, 1000, 1001, 1001, 1001)
	if f.IntersectsBox(box) {
		t.Error("expected distant box to be outside frustum")
	}
}

func TestFrustumRejectsBehindCamera(t *testing.T) {
	f := NewFrustum(testViewProj())
	box := NewBox3S(-0.5, -0.5, 20, 0.5, 0.5, 25) // positive world Z is behind the camera at Z=5.
	if f.IntersectsBox(box) {
		t.Error("expected box behind camera to be outside frustum")
	}
}
