// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package bif

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFixtureLoaderBuildsGrid(t *testing.T) {
	loader := &FixtureLoader{GridSize: 3, Spacing: 2}
	raw, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(raw.Instances) != 9 {
		t.Fatalf("expected 9 instances, got %d", len(raw.Instances))
	}

	scene, err := Build(raw, testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if scene.InstanceCount() != 9 {
		t.Errorf("expected 9 scene instances, got %d", scene.InstanceCount())
	}
	proto, ok := scene.Prototype("cube")
	if !ok {
		t.Fatal("expected cube prototype")
	}
	if proto.Triangles() != 12 { // 6 quad faces fan-triangulated into 2 triangles each.
		t.Errorf("expected 12 triangles from fan triangulation, got %d", proto.Triangles())
	}
}

func TestBuildRejectsUnknownPrototype(t *testing.T) {
	raw := &RawScene{
		Instances: []RawInstance{{Name: "i0", Prototype: "missing"}},
	}
	if _, err := Build(raw, testLogger()); err == nil {
		t.Error("expected error for instance referencing unknown prototype")
	}
}

func TestTriangulateFan(t *testing.T) {
	idx := []int32{0, 1, 2, 3, 4, 5, 6} // a quad face then a triangle face.
	counts := []int32{4, 3}
	out, err := triangulate(idx, counts)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	want := []int32{0, 1, 2, 0, 2, 3, 4, 5, 6}
	if len(out) != len(want) {
		t.Fatalf("expected %d indices, got %d: %v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("triangulate wrong: got %v want %v", out, want)
		}
	}
}

func TestFlipWindingReversesTail(t *testing.T) {
	idx := []int32{0, 1, 2, 3, 4, 5}
	flipWinding(idx)
	want := []int32{0, 2, 1, 3, 5, 4}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("flipWinding wrong: got %v want %v", idx, want)
		}
	}
}
