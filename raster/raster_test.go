// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"fmt"
	"testing"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// fakeGPU is an in-memory GPU double: buffers are plain byte slices, passes
// just record that they happened. It lets raster's tests exercise the full
// frame protocol without a real wgpu device.
type fakeGPU struct {
	presented int
	passes    []string
}

type fakeBuffer struct{ data []byte }

func (b *fakeBuffer) Write(off uint64, data []byte) error {
	copy(b.data[off:], data)
	return nil
}
func (b *fakeBuffer) Size() uint64 { return uint64(len(b.data)) }

func (g *fakeGPU) CreateBuffer(desc BufferDesc) (Buffer, error) {
	return &fakeBuffer{data: make([]byte, desc.Size)}, nil
}
func (g *fakeGPU) CreateBindGroup(desc BindGroupDesc) (BindGroup, error) { return desc, nil }
func (g *fakeGPU) CreatePipeline(desc PipelineDesc) (Pipeline, error)    { return desc, nil }
func (g *fakeGPU) BeginRenderPass(desc RenderPassDesc) (RenderPass, error) {
	g.passes = append(g.passes, desc.Label)
	return &fakePass{}, nil
}
func (g *fakeGPU) Present() error { g.presented++; return nil }

type fakePass struct{ draws int }

func (p *fakePass) SetPipeline(Pipeline)                      {}
func (p *fakePass) SetBindGroup(uint32, BindGroup)             {}
func (p *fakePass) SetVertexBuffer(uint32, Buffer)             {}
func (p *fakePass) SetIndexBuffer(Buffer)                      {}
func (p *fakePass) DrawIndexed(indexCount, instanceCount uint32) { p.draws++ }
func (p *fakePass) End()                                       {}

func testQuadScene(t *testing.T, n int) *bif.Scene {
	t.Helper()
	s := bif.NewScene()
	norm := lin.V3{X: 0, Y: 0, Z: 1}
	proto := &bif.Prototype{
		Name: "quad",
		Vertices: []bif.Vertex{
			{Pos: lin.V3{X: -1, Y: -1, Z: 0}, Norm: norm},
			{Pos: lin.V3{X: 1, Y: -1, Z: 0}, Norm: norm},
			{Pos: lin.V3{X: 1, Y: 1, Z: 0}, Norm: norm},
			{Pos: lin.V3{X: -1, Y: 1, Z: 0}, Norm: norm},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	if err := s.AddPrototype(proto); err != nil {
		t.Fatalf("AddPrototype: %v", err)
	}
	for i := 0; i < n; i++ {
		xf := lin.NewM4I()
		xf.TranslateTM(float64(i)*3, 0, 10)
		if _, err := s.AddInstance(fmt.Sprintf("quad-%d", i), "quad", xf); err != nil {
			t.Fatalf("AddInstance: %v", err)
		}
	}
	return s
}

func testCamera() *lin.Camera {
	cam := lin.NewCamera()
	cam.Target = &lin.V3{X: 15, Y: 0, Z: 10}
	cam.Distance = 40
	cam.SetPerspective(60, 16.0/9.0, 0.1, 1000)
	return cam
}

func TestCullKeepsOnlyInstancesInFrustum(t *testing.T) {
	s := testQuadScene(t, 3)
	xf := lin.NewM4I()
	xf.TranslateTM(-1000, 0, -1000) // far outside the frustum below.
	if _, err := s.AddInstance("offscreen", "quad", xf); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	cam := testCamera()
	sc := newScratch()
	sc.cull(s, lin.NewFrustum(cam.ViewProj()), &lin.V3{})
	if len(sc.instances) != 3 {
		t.Errorf("expected 3 visible instances, got %d", len(sc.instances))
	}
}

func TestPartitionByBudgetRespectsCumulativeTriangleCount(t *testing.T) {
	s := testQuadScene(t, 10) // 2 triangles each.
	sc := newScratch()
	sc.cull(s, lin.NewFrustum(testCamera().ViewProj()), &lin.V3{})
	boundary := partitionByBudget(sc, 10) // room for 5 quads.
	if boundary != 5 {
		t.Errorf("expected boundary at 5 instances (10 triangles / 2 per quad), got %d", boundary)
	}
	// The partition only guarantees every near distance is <= every far
	// distance, not that the near prefix itself ends up fully sorted.
	for i := 0; i < boundary; i++ {
		for j := boundary; j < len(sc.distSqr); j++ {
			if sc.distSqr[i] > sc.distSqr[j] {
				t.Errorf("near instance %d (dist %v) farther than far instance %d (dist %v)", i, sc.distSqr[i], j, sc.distSqr[j])
			}
		}
	}
}

func TestInstanceBufferClampsOnOverflow(t *testing.T) {
	gpu := &fakeGPU{}
	buf, err := NewInstanceBuffer(gpu, 2, nil)
	if err != nil {
		t.Fatalf("NewInstanceBuffer: %v", err)
	}
	s := testQuadScene(t, 5)
	var instances []*bif.Instance
	s.IterInstances(func(in *bif.Instance) { instances = append(instances, in) })
	written, err := buf.Write(instances)
	if written != 2 {
		t.Errorf("expected clamp to capacity 2, wrote %d", written)
	}
	if err != bif.ErrInstanceBufferOverflow {
		t.Errorf("expected ErrInstanceBufferOverflow, got %v", err)
	}
}

func TestInstanceBufferWritesWithinCapacity(t *testing.T) {
	gpu := &fakeGPU{}
	buf, err := NewInstanceBuffer(gpu, 8, nil)
	if err != nil {
		t.Fatalf("NewInstanceBuffer: %v", err)
	}
	s := testQuadScene(t, 3)
	var instances []*bif.Instance
	s.IterInstances(func(in *bif.Instance) { instances = append(instances, in) })
	written, err := buf.Write(instances)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written != 3 {
		t.Errorf("expected 3 instances written, got %d", written)
	}
}

func TestRendererFrameRunsTwoPassesAndPresents(t *testing.T) {
	gpu := &fakeGPU{}
	r, err := NewRenderer(gpu, 64, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	s := testQuadScene(t, 4)
	cam := testCamera()
	overlayCalled := false
	err = r.Frame(s, cam, 1_000_000, func(RenderPass) { overlayCalled = true })
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !overlayCalled {
		t.Error("expected overlay callback to run")
	}
	if len(gpu.passes) != 2 {
		t.Errorf("expected 2 render passes (scene + ui), got %d", len(gpu.passes))
	}
	if gpu.presented != 1 {
		t.Errorf("expected exactly one Present call, got %d", gpu.presented)
	}
	if r.Stats.Visible != 4 {
		t.Errorf("expected Stats.Visible=4, got %d", r.Stats.Visible)
	}
}

func TestRendererFrameReusesCachedFrustumWhenCameraUnchanged(t *testing.T) {
	gpu := &fakeGPU{}
	r, err := NewRenderer(gpu, 64, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	s := testQuadScene(t, 2)
	cam := testCamera()
	if err := r.Frame(s, cam, 1_000_000, nil); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	cached := r.cachedVP
	if err := r.Frame(s, cam, 1_000_000, nil); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if r.cachedVP != cached {
		t.Error("expected cachedVP pointer to be reused, not reallocated, when the camera didn't move")
	}
}

func TestRenderHUDSizesToText(t *testing.T) {
	img := RenderHUD(FrameStats{Visible: 12, Near: 8, Far: 4})
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("expected a non-empty HUD image")
	}
}
