// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package pathtrace

import (
	"testing"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/accel"
	"github.com/byvfx/bif/math/lin"
)

func emissiveQuadScene(t *testing.T) *bif.Scene {
	t.Helper()
	s := bif.NewScene()
	n := lin.V3{X: 0, Y: 0, Z: -1}
	proto := &bif.Prototype{
		Name: "quad",
		Vertices: []bif.Vertex{
			{Pos: lin.V3{X: -5, Y: -5, Z: 0}, Norm: n},
			{Pos: lin.V3{X: 5, Y: -5, Z: 0}, Norm: n},
			{Pos: lin.V3{X: 5, Y: 5, Z: 0}, Norm: n},
			{Pos: lin.V3{X: -5, Y: 5, Z: 0}, Norm: n},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
	if err := s.AddPrototype(proto); err != nil {
		t.Fatalf("AddPrototype: %v", err)
	}
	mat := bif.NewMaterial("glow")
	mat.SetEmissive(1, 1, 1)
	if err := s.BindMaterial("quad", mat); err != nil {
		t.Fatalf("BindMaterial: %v", err)
	}
	xf := lin.NewM4I()
	xf.TranslateTM(0, 0, 5)
	if _, err := s.AddInstance("quad-0", "quad", xf); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	s.SetBackground(0, 0, 0)
	return s
}

func testIntegrator(t *testing.T) *Integrator {
	t.Helper()
	s := emissiveQuadScene(t)
	ac, err := accel.New(s, accel.Options{})
	if err != nil {
		t.Fatalf("accel.New: %v", err)
	}
	cam := lin.NewCamera()
	cam.Target = &lin.V3{X: 0, Y: 0, Z: 5}
	cam.Yaw, cam.Pitch, cam.Distance = 0, 0, 5
	cam.SetPerspective(60, 1, 0.1, 100)
	return New(s, ac, cam, Config{SamplesPerPixel: 4, MaxDepth: 4, MinRRBounces: 2})
}

func TestTraceAccumulatesEmissiveDirectHit(t *testing.T) {
	in := testIntegrator(t)
	in.width, in.height = 16, 16
	r := newPixelRNG(8, 8, 0)
	ray := in.Camera.PrimaryRay(0, 0) // straight down the camera's forward axis.
	c := in.trace(ray, r)
	if c.X < 0.9 || c.X > 1.1 {
		t.Errorf("expected radiance ~= 1 from a direct hit on an emissive surface, got %+v", c)
	}
}

func TestTraceMissesReturnBackground(t *testing.T) {
	s := bif.NewScene()
	s.SetBackground(0.2, 0.3, 0.4)
	ac, err := accel.New(s, accel.Options{})
	if err != nil {
		t.Fatalf("accel.New: %v", err)
	}
	cam := lin.NewCamera()
	in := New(s, ac, cam, Config{SamplesPerPixel: 1, MaxDepth: 2})
	in.width, in.height = 4, 4
	r := newPixelRNG(0, 0, 0)
	ray := in.Camera.PrimaryRay(0, 0)
	c := in.trace(ray, r)
	const eps = 1e-5
	if abs(c.X-0.2) > eps || abs(c.Y-0.3) > eps || abs(c.Z-0.4) > eps {
		t.Errorf("expected background colour on a miss, got %+v", c)
	}
}

func TestRenderDispatchesAllTiles(t *testing.T) {
	in := testIntegrator(t)
	job := in.Render(130, 70) // forces a partial tile on both edges.
	got := 0
	for got < job.Total {
		if tr, ok := job.Poll(); ok {
			if len(tr.Pixels) != tr.Tile.W*tr.Tile.H*3 {
				t.Errorf("tile %+v has wrong pixel count: %d", tr.Tile, len(tr.Pixels))
			}
			got++
		}
	}
	wantTiles := buildTiles(130, 70)
	if job.Total != len(wantTiles) {
		t.Errorf("expected %d tiles, got %d", len(wantTiles), job.Total)
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := newPixelRNG(3, 4, 2)
	b := newPixelRNG(3, 4, 2)
	for i := 0; i < 8; i++ {
		av, bv := a.Float64(), b.Float64()
		if av != bv {
			t.Fatalf("rng stream diverged at sample %d: %v vs %v", i, av, bv)
		}
	}
}

func TestRNGDiffersAcrossPixels(t *testing.T) {
	a := newPixelRNG(3, 4, 0)
	b := newPixelRNG(3, 5, 0)
	if a.Float64() == b.Float64() {
		t.Error("expected different pixels to produce different streams")
	}
}

func TestFireflyClampCapsLuminance(t *testing.T) {
	hot := lin.V3{X: 100, Y: 100, Z: 100}
	clamped := fireflyClamp(hot, 1)
	if luminance(clamped) > 1.01 {
		t.Errorf("expected clamped luminance <= 1, got %v", luminance(clamped))
	}
	if fireflyClamp(hot, 0) != hot {
		t.Error("expected max=0 to disable clamping")
	}
}

func TestToSRGB8RoundTrips(t *testing.T) {
	r, g, b := toSRGB8(lin.V3{X: 1, Y: 0, Z: 0.5}, 1)
	if r != 255 {
		t.Errorf("expected full white channel to quantize to 255, got %d", r)
	}
	if g != 0 {
		t.Errorf("expected zero channel to stay 0, got %d", g)
	}
	if b == 0 || b == 255 {
		t.Errorf("expected mid-grey to encode to an intermediate byte, got %d", b)
	}
}
