// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/buildc"
	"github.com/byvfx/bif/math/lin"
	"github.com/byvfx/bif/raster"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGPU is the same in-memory GPU double raster_test.go uses, copied
// here since raster's is unexported and this package tests Engine's
// wiring, not raster's frame protocol itself.
type fakeGPU struct{ presented int }

type fakeBuffer struct{ data []byte }

func (b *fakeBuffer) Write(off uint64, data []byte) error { copy(b.data[off:], data); return nil }
func (b *fakeBuffer) Size() uint64                        { return uint64(len(b.data)) }

func (g *fakeGPU) CreateBuffer(desc raster.BufferDesc) (raster.Buffer, error) {
	return &fakeBuffer{data: make([]byte, desc.Size)}, nil
}
func (g *fakeGPU) CreateBindGroup(desc raster.BindGroupDesc) (raster.BindGroup, error) {
	return desc, nil
}
func (g *fakeGPU) CreatePipeline(desc raster.PipelineDesc) (raster.Pipeline, error) {
	return desc, nil
}
func (g *fakeGPU) BeginRenderPass(desc raster.RenderPassDesc) (raster.RenderPass, error) {
	return &fakePass{}, nil
}
func (g *fakeGPU) Present() error { g.presented++; return nil }

type fakePass struct{}

func (p *fakePass) SetPipeline(raster.Pipeline)                  {}
func (p *fakePass) SetBindGroup(uint32, raster.BindGroup)        {}
func (p *fakePass) SetVertexBuffer(uint32, raster.Buffer)        {}
func (p *fakePass) SetIndexBuffer(raster.Buffer)                 {}
func (p *fakePass) DrawIndexed(indexCount, instanceCount uint32) {}
func (p *fakePass) End()                                         {}

func testQuadFixtureLoader() *bif.FixtureLoader {
	return &bif.FixtureLoader{GridSize: 2, Spacing: 3}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(&fakeGPU{}, 64, testQuadFixtureLoader(), testLogger(), bif.PolygonBudget(1000))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.RebuildScene(context.Background()); err != nil {
		t.Fatalf("RebuildScene: %v", err)
	}
	cam := lin.NewCamera()
	cam.Target = &lin.V3{X: 0, Y: 0, Z: 0}
	cam.Distance = 20
	cam.SetPerspective(60, 16.0/9.0, 0.1, 1000)
	e.SetCamera(cam)
	return e
}

func TestFrameRasterizeRunsWithoutError(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Frame(16 * time.Millisecond); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if got := e.Stats().Raster.Visible; got == 0 {
		t.Error("expected some instances visible after a rasterize frame")
	}
}

func TestSelectModePathTraceBuildsThenAccumulates(t *testing.T) {
	e := newTestEngine(t)
	e.Resize(8, 8)
	e.SelectMode(ModePathTrace)

	// First frame only requests the build; accel.New's in-module TLAS
	// builder runs synchronously on the worker goroutine, so poll until
	// it reports Complete before asserting tiles arrived.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if err := e.Frame(16 * time.Millisecond); err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if e.Stats().Build == buildc.Complete {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got := e.Stats().Build; got != buildc.Complete {
		t.Fatalf("expected build Complete, got %v", got)
	}

	for time.Now().Before(deadline) {
		if err := e.Frame(16 * time.Millisecond); err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if _, ok := e.Image(); ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	img, ok := e.Image()
	if !ok {
		t.Fatal("expected a path-traced image once tiles arrive")
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("expected an 8x8 image, got %v", img.Bounds())
	}
}

func TestSelectModeBackToRasterizeInvalidatesBuild(t *testing.T) {
	e := newTestEngine(t)
	e.Resize(4, 4)
	e.SelectMode(ModePathTrace)
	if err := e.Frame(time.Millisecond); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	e.SelectMode(ModeRasterize)
	if got := e.Stats().Build; got != buildc.NotStarted {
		t.Errorf("expected build state NotStarted after switching back to Rasterize, got %v", got)
	}
	if _, ok := e.Image(); ok {
		t.Error("expected no path-traced image after switching back to Rasterize")
	}
}

func TestNewSceneReplacesSceneAndInvalidatesBuild(t *testing.T) {
	e := newTestEngine(t)
	first := e.NewScene()
	if first.InstanceCount() != 0 {
		t.Errorf("expected an empty scene, got %d instances", first.InstanceCount())
	}
}
