// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package accel

import (
	"testing"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// testQuad returns a single-triangle-pair prototype lying in the z=0
// plane, facing +Z, spanning [-1,1] in x and y.
func testQuad() *bif.Prototype {
	n := lin.V3{X: 0, Y: 0, Z: 1}
	return &bif.Prototype{
		Name: "quad",
		Vertices: []bif.Vertex{
			{Pos: lin.V3{X: -1, Y: -1, Z: 0}, Norm: n},
			{Pos: lin.V3{X: 1, Y: -1, Z: 0}, Norm: n},
			{Pos: lin.V3{X: 1, Y: 1, Z: 0}, Norm: n},
			{Pos: lin.V3{X: -1, Y: 1, Z: 0}, Norm: n},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func testScene(t *testing.T) *bif.Scene {
	t.Helper()
	s := bif.NewScene()
	if err := s.AddPrototype(testQuad()); err != nil {
		t.Fatalf("AddPrototype: %v", err)
	}
	xf := lin.NewM4I()
	xf.TranslateTM(0, 0, 5) // quad sits at world z=5, facing the camera at the origin.
	if _, err := s.AddInstance("quad-0", "quad", xf); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	return s
}

func straightRay() *lin.Ray {
	return lin.NewRay(&lin.V3{X: 0, Y: 0, Z: 0}, &lin.V3{X: 0, Y: 0, Z: 1})
}

func TestTLASHitsTranslatedInstance(t *testing.T) {
	s := testScene(t)
	a, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hit, ok := a.Intersect(straightRay())
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.T < 4.99 || hit.T > 5.01 {
		t.Errorf("expected t ~= 5, got %v", hit.T)
	}
	if hit.Instance == nil || hit.Instance.Name != "quad-0" {
		t.Errorf("expected hit on quad-0, got %+v", hit.Instance)
	}
	if hit.Normal.Z < 0.99 {
		t.Errorf("expected world normal ~= +Z, got %+v", hit.Normal)
	}
}

func TestTLASMissesWhenAimedAway(t *testing.T) {
	s := testScene(t)
	a, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ray := lin.NewRay(&lin.V3{X: 0, Y: 0, Z: 0}, &lin.V3{X: 0, Y: 0, Z: -1})
	if _, ok := a.Intersect(ray); ok {
		t.Error("expected no hit aiming away from the scene")
	}
}

func TestFallbackAgreesWithTLAS(t *testing.T) {
	s := testScene(t)
	tlas, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fb, err := NewFallback(s)
	if err != nil {
		t.Fatalf("NewFallback: %v", err)
	}
	ray := straightRay()
	h1, ok1 := tlas.Intersect(ray)
	h2, ok2 := fb.Intersect(ray)
	if ok1 != ok2 {
		t.Fatalf("TLAS hit=%v, Fallback hit=%v", ok1, ok2)
	}
	if ok1 && (h1.T < h2.T-1e-9 || h1.T > h2.T+1e-9) {
		t.Errorf("TLAS and Fallback disagree on t: %v vs %v", h1.T, h2.T)
	}
}

func TestEmptySceneNeverHits(t *testing.T) {
	s := bif.NewScene()
	a, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := a.Intersect(straightRay()); ok {
		t.Error("expected no hit in an empty scene")
	}
}

// failingBuilder always reports unavailable, exercising New's fall-through
// to the in-module TLAS builder.
type failingBuilder struct{}

func (failingBuilder) Build(scene *bif.Scene) (Accel, error) {
	return nil, bif.ErrLibraryUnavailable
}

func TestNewFallsThroughOnBuilderFailure(t *testing.T) {
	s := testScene(t)
	a, err := New(s, Options{Builder: failingBuilder{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := a.Intersect(straightRay()); !ok {
		t.Error("expected the in-module TLAS to still find the hit")
	}
}

func TestBLASManyTrianglesSplits(t *testing.T) {
	// A grid of disjoint quads forces the BLAS builder past leafThreshold
	// and exercises an interior split, not just a single leaf.
	var verts []bif.Vertex
	var idx []uint32
	n := lin.V3{X: 0, Y: 0, Z: 1}
	for i := 0; i < 6; i++ {
		ox := float64(i) * 3
		base := uint32(len(verts))
		verts = append(verts,
			bif.Vertex{Pos: lin.V3{X: ox - 1, Y: -1, Z: 0}, Norm: n},
			bif.Vertex{Pos: lin.V3{X: ox + 1, Y: -1, Z: 0}, Norm: n},
			bif.Vertex{Pos: lin.V3{X: ox + 1, Y: 1, Z: 0}, Norm: n},
			bif.Vertex{Pos: lin.V3{X: ox - 1, Y: 1, Z: 0}, Norm: n},
		)
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	proto := &bif.Prototype{Name: "strip", Vertices: verts, Indices: idx}
	s := bif.NewScene()
	if err := s.AddPrototype(proto); err != nil {
		t.Fatalf("AddPrototype: %v", err)
	}
	xf := lin.NewM4I()
	xf.TranslateTM(0, 0, 5)
	if _, err := s.AddInstance("strip-0", "strip", xf); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	a, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ray := lin.NewRay(&lin.V3{X: 15, Y: 0, Z: 0}, &lin.V3{X: 0, Y: 0, Z: 1})
	hit, ok := a.Intersect(ray)
	if !ok {
		t.Fatal("expected a hit on the last quad in the strip")
	}
	if hit.T < 4.99 || hit.T > 5.01 {
		t.Errorf("expected t ~= 5, got %v", hit.T)
	}
}
