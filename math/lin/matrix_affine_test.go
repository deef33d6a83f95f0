// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestAffineInvRoundTrip(t *testing.T) {
	a := NewM4I()
	a.SetAa(0, 1, 0, Rad(30))
	a.ScaleMS(2, 3, 4)
	a.TranslateTM(5, -1, 2)

	inv, ok := (&M4{}).AffineInv(a)
	if !ok {
		t.Fatal("expected invertible affine matrix")
	}

	p := &V4{1, 2, 3, 1}
	world := (&V4{}).MultvM(p, a)
	back := (&V4{}).MultvM(world, inv)
	if !Aeq(back.X, p.X) || !Aeq(back.Y, p.Y) || !Aeq(back.Z, p.Z) || !Aeq(back.W, p.W) {
		t.Errorf("round trip failed: got %s want %s", back.Dump(), p.Dump())
	}
}

func TestAffineInvSingular(t *testing.T) {
	_, ok := (&M4{}).AffineInv(M4Z) // zero matrix, non-invertible upper 3x3.
	if ok {
		t.Error("expected singular matrix to report ok=false")
	}
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	m := NewM4I()
	m.ScaleMS(1, 1, 4) // squash along Z.

	nm, ok := NormalMatrix(m)
	if !ok {
		t.Fatal("expected invertible normal matrix")
	}

	// a normal along Z should be scaled by 1/4 before renormalizing,
	// i.e. point in the same direction it started (Z), just rescaled.
	n := &V3{0, 0, 1}
	transformed := (&V3{}).MultvM(n, nm)
	transformed.Unit()
	if !transformed.Aeq(&V3{0, 0, 1}) {
		t.Errorf("expected normal to stay aligned with Z, got %s", transformed.Dump())
	}
}
