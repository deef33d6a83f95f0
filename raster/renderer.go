// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"log/slog"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// Renderer owns the GPU-facing state of the real-time preview path: the
// two fixed pipelines (3D scene, UI overlay), the instance buffer, and
// the per-frame culling/LOD scratch space. One Renderer is created per
// swapchain/surface and lives for the process's lifetime; Scene is
// swapped out by the caller (e.g. after RebuildScene) rather than owned.
type Renderer struct {
	gpu GPU
	log *slog.Logger

	scenePipeline Pipeline
	uiPipeline    Pipeline
	instances     *InstanceBuffer

	scratch *scratch

	cachedVP    *lin.M4
	haveCached  bool
	frustum     *lin.Frustum

	Stats FrameStats
}

// FrameStats reports the previous frame's culling/LOD outcome, surfaced
// through Engine.Stats() for the UI overlay and tests.
type FrameStats struct {
	Visible int
	Near    int
	Far     int
}

// NewRenderer builds the fixed 3D-scene and UI-overlay pipelines and
// allocates an instance buffer with room for instanceCapacity instances.
func NewRenderer(gpu GPU, instanceCapacity int, log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.Default()
	}
	scenePipeline, err := gpu.CreatePipeline(PipelineDesc{
		Label: "scene-3d",
		VertexLayout: []VertexBufferLayout{
			{Stride: 32, StepMode: StepModeVertex, Attributes: []VertexAttribute{
				{Format: "float32x3", Offset: 0, ShaderLocation: 0},  // position
				{Format: "float32x3", Offset: 12, ShaderLocation: 1}, // normal
				{Format: "float32x2", Offset: 24, ShaderLocation: 2}, // uv
			}},
			{Stride: instanceStride, StepMode: StepModeInstance, Attributes: []VertexAttribute{
				{Format: "float32x4", Offset: 0, ShaderLocation: 3},
				{Format: "float32x4", Offset: 16, ShaderLocation: 4},
				{Format: "float32x4", Offset: 32, ShaderLocation: 5},
				{Format: "float32x4", Offset: 48, ShaderLocation: 6},
			}},
		},
		CullMode:     CullBack,
		DepthCompare: DepthCompareLess,
		DepthWrite:   true,
		ColorFormat:  "bgra8unorm-srgb",
	})
	if err != nil {
		return nil, err
	}
	uiPipeline, err := gpu.CreatePipeline(PipelineDesc{
		Label:        "ui-overlay",
		CullMode:     CullNone,
		DepthCompare: DepthCompareAlways,
		DepthWrite:   false,
		ColorFormat:  "bgra8unorm-srgb",
	})
	if err != nil {
		return nil, err
	}
	instances, err := NewInstanceBuffer(gpu, instanceCapacity, log)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		gpu:           gpu,
		log:           log,
		scenePipeline: scenePipeline,
		uiPipeline:    uiPipeline,
		instances:     instances,
		scratch:       newScratch(),
	}, nil
}

// Frame runs one full per-frame protocol against scene from cam's current
// point of view, enforcing polygonBudget triangles in the near (full-mesh)
// set. overlay, if non-nil, draws after the 3D pass with depth disabled.
// The 3D pass binds the scene pipeline and ends without issuing draw
// calls: the near transforms are uploaded and both sets are counted in
// Stats, but neither the near meshes nor the far proxy boxes are drawn.
func (r *Renderer) Frame(scene *bif.Scene, cam *lin.Camera, polygonBudget uint64, overlay func(RenderPass)) error {
	vp := cam.ViewProj()
	if !r.haveCached || !r.cachedVP.Eq(vp) {
		r.frustum = lin.NewFrustum(vp)
		if r.cachedVP == nil {
			r.cachedVP = &lin.M4{}
		}
		r.cachedVP.Set(vp)
		r.haveCached = true
	}

	eyeX, eyeY, eyeZ := cam.Eye()
	eye := &lin.V3{X: eyeX, Y: eyeY, Z: eyeZ}
	r.scratch.cull(scene, r.frustum, eye)

	boundary := partitionByBudget(r.scratch, polygonBudget)
	near := r.scratch.instances[:boundary]
	far := r.scratch.instances[boundary:]

	written, err := r.instances.Write(near)
	if err != nil && err != bif.ErrInstanceBufferOverflow {
		return err
	}
	r.Stats = FrameStats{Visible: len(r.scratch.instances), Near: written, Far: len(far)}

	pass, perr := r.gpu.BeginRenderPass(RenderPassDesc{
		Label:    "scene",
		Color:    ColorAttachment{Clear: true},
		Depth:    DepthAttachment{Clear: true, ClearDepth: 1},
		HasDepth: true,
	})
	if perr != nil {
		return perr
	}
	pass.SetPipeline(r.scenePipeline)
	pass.End()

	if overlay != nil {
		uiPass, uerr := r.gpu.BeginRenderPass(RenderPassDesc{Label: "ui"})
		if uerr != nil {
			return uerr
		}
		uiPass.SetPipeline(r.uiPipeline)
		overlay(uiPass)
		uiPass.End()
	}

	return r.gpu.Present()
}
