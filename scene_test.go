// Copyright © 2024 Galvanized Logic Inc.

package bif

import (
	"errors"
	"testing"

	"github.com/byvfx/bif/math/lin"
)

func testCube() *Prototype {
	return &Prototype{
		Name: "cube",
		Vertices: []Vertex{
			{Pos: lin.V3{X: -1, Y: -1, Z: -1}},
			{Pos: lin.V3{X: 1, Y: -1, Z: -1}},
			{Pos: lin.V3{X: 1, Y: 1, Z: -1}},
			{Pos: lin.V3{X: -1, Y: 1, Z: -1}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestAddPrototypeComputesBounds(t *testing.T) {
	s := NewScene()
	if err := s.AddPrototype(testCube()); err != nil {
		t.Fatalf("AddPrototype: %v", err)
	}
	p, ok := s.Prototype("cube")
	if !ok {
		t.Fatal("expected prototype to be registered")
	}
	if !p.Bounds.Min.Aeq(&lin.V3{X: -1, Y: -1, Z: -1}) {
		t.Errorf("bounds min wrong: %+v", p.Bounds.Min)
	}
}

func TestAddPrototypeRejectsBadGeometry(t *testing.T) {
	s := NewScene()
	bad := &Prototype{Name: "bad", Vertices: []Vertex{{}}, Indices: []uint32{0, 1}}
	err := s.AddPrototype(bad)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestAddInstanceUnknownPrototype(t *testing.T) {
	s := NewScene()
	_, err := s.AddInstance("i0", "missing", lin.NewM4I())
	if !errors.Is(err, ErrUnknownPrototype) {
		t.Errorf("expected ErrUnknownPrototype, got %v", err)
	}
}

func TestAddPrototypeDefaultMaterial(t *testing.T) {
	s := NewScene()
	s.AddPrototype(testCube())
	in, err := s.AddInstance("i0", "cube", lin.NewM4I())
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if in.Prototype.Material == nil || in.Prototype.Material.Name != "__default__" {
		t.Errorf("expected default material, got %+v", in.Prototype.Material)
	}
	if s.InstanceCount() != 1 {
		t.Errorf("expected 1 instance, got %d", s.InstanceCount())
	}
}

func TestBindMaterialRebindsAllInstances(t *testing.T) {
	s := NewScene()
	s.AddPrototype(testCube())
	glow := NewMaterial("glow")
	if err := s.BindMaterial("cube", glow); err != nil {
		t.Fatalf("BindMaterial: %v", err)
	}
	a, _ := s.AddInstance("i0", "cube", lin.NewM4I())
	b, _ := s.AddInstance("i1", "cube", lin.NewM4I())
	if a.Prototype.Material != glow || b.Prototype.Material != glow {
		t.Errorf("expected both instances to see the rebound material")
	}
}

func TestBindMaterialUnknownPrototype(t *testing.T) {
	s := NewScene()
	err := s.BindMaterial("missing", NewMaterial("glow"))
	if !errors.Is(err, ErrUnknownPrototype) {
		t.Errorf("expected ErrUnknownPrototype, got %v", err)
	}
}

func TestGenerationIncrementsOnMutation(t *testing.T) {
	s := NewScene()
	g0 := s.Generation()
	s.AddPrototype(testCube())
	g1 := s.Generation()
	if g1 <= g0 {
		t.Errorf("expected generation to increase after AddPrototype: %d -> %d", g0, g1)
	}
	s.AddInstance("i0", "cube", lin.NewM4I())
	g2 := s.Generation()
	if g2 <= g1 {
		t.Errorf("expected generation to increase after AddInstance: %d -> %d", g1, g2)
	}
}

func TestInstanceWorldBounds(t *testing.T) {
	s := NewScene()
	s.AddPrototype(testCube())
	xf := lin.NewM4I()
	xf.TranslateTM(10, 0, 0)
	in, _ := s.AddInstance("i0", "cube", xf)
	wb := in.WorldBounds()
	if !wb.Min.Aeq(&lin.V3{X: 9, Y: -1, Z: -1}) {
		t.Errorf("world bounds min wrong: %+v", wb.Min)
	}
}
