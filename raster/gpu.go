// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package raster is the real-time preview path: it consumes a *bif.Scene
// plus camera state and prepares a frame of instanced geometry.
// The per-frame protocol is:
//
//   - Extract (or reuse a cached) view-projection frustum.
//   - Cull instances against it.
//   - Partition the visible set into near (full mesh) and far (proxy box)
//     by an nth-element selection against a triangle budget, not a sort.
//   - Upload visible-instance transforms into a COPY_DST instance buffer,
//     clamping rather than reallocating on overflow.
//   - Open two passes: 3D scene with depth, then a UI overlay without. The
//     scene pass binds the 3D pipeline but issues no draw calls, so
//     neither the near nor the far set is drawn.
package raster

// GPU is the narrow surface raster needs from a graphics backend, modeled
// on github.com/cogentcore/webgpu's device/pipeline/render-pass vocabulary
// so this package compiles against either a real wgpu.Device wrapper or a
// test double — it never imports webgpu itself. A real backend adapts its
// device to this interface at the call site (cmd/ in a full build), not
// inside this package.
type GPU interface {
	// CreateBuffer allocates a GPU-visible buffer, sized and used per desc.
	CreateBuffer(desc BufferDesc) (Buffer, error)

	// CreateBindGroup binds a set of buffers/textures to the slots a
	// pipeline's shader expects at the given group index.
	CreateBindGroup(desc BindGroupDesc) (BindGroup, error)

	// CreatePipeline compiles a render pipeline from desc: vertex layout,
	// front-face winding, cull mode, depth comparison, and color target
	// format are all fixed per pipeline, not set per draw call.
	CreatePipeline(desc PipelineDesc) (Pipeline, error)

	// BeginRenderPass opens a render pass against the given attachments.
	// The caller must call RenderPass.End before the next BeginRenderPass.
	BeginRenderPass(desc RenderPassDesc) (RenderPass, error)

	// Present submits the current frame's command buffer and displays it.
	// Returns ErrSurfaceLost if the swapchain surface needs reconfiguring,
	// the same sentinel bif uses elsewhere for unrecoverable-this-frame
	// GPU conditions.
	Present() error
}

// BufferUsage mirrors wgpu's bitmask usage flags; OR them together.
type BufferUsage uint32

const (
	UsageVertex BufferUsage = 1 << iota
	UsageIndex
	UsageUniform
	UsageCopyDst
	UsageCopySrc
)

// BufferDesc describes a buffer to allocate.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// Buffer is a GPU-resident allocation. Write uploads data at byteOffset;
// the caller is responsible for staying within the buffer's declared Size.
type Buffer interface {
	Write(byteOffset uint64, data []byte) error
	Size() uint64
}

// BindGroupEntry binds one resource to a shader binding slot.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
}

// BindGroupDesc describes a set of resource bindings at one group index.
type BindGroupDesc struct {
	Label   string
	Entries []BindGroupEntry
}

// BindGroup is an opaque handle returned by GPU.CreateBindGroup.
type BindGroup interface{}

// VertexStepMode selects whether an attribute advances per vertex or per
// instance, the mechanism the instance buffer's model-matrix columns rely
// on (vec4 x4, StepModeInstance) to avoid a per-instance draw call.
type VertexStepMode int

const (
	StepModeVertex VertexStepMode = iota
	StepModeInstance
)

// VertexAttribute describes one shader input within a vertex buffer layout.
type VertexAttribute struct {
	Format         string // e.g. "float32x3", "float32x4".
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes one vertex buffer slot's stride, step mode,
// and attributes.
type VertexBufferLayout struct {
	Stride     uint64
	StepMode   VertexStepMode
	Attributes []VertexAttribute
}

// CullMode selects which winding is discarded. The 3D scene pipeline uses
// CullBack: front faces are counter-clockwise (C2's triangulation
// pre-flips left-handed input to guarantee this), so the back face is the
// clockwise one. The UI overlay pipeline uses CullNone.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
)

// DepthCompare selects the depth test function. The 3D pass uses Less;
// the UI overlay pipeline uses Always with DepthWrite off, and its render
// pass has no depth attachment, matching the "without depth" wording of
// the two-pass protocol.
type DepthCompare int

const (
	DepthCompareLess DepthCompare = iota
	DepthCompareAlways
)

// PipelineDesc fixes one pipeline's fixed-function state. A raster
// Renderer builds exactly two: the 3D scene pipeline (depth-tested,
// back-face culled) and the UI overlay pipeline (no depth).
type PipelineDesc struct {
	Label        string
	VertexLayout []VertexBufferLayout
	CullMode     CullMode
	DepthCompare DepthCompare
	DepthWrite   bool
	ColorFormat  string // e.g. "bgra8unorm-srgb"; fragment output is linear.
}

// Pipeline is an opaque compiled pipeline handle.
type Pipeline interface{}

// ColorAttachment describes one render pass's color target and clear op.
type ColorAttachment struct {
	ClearColor [4]float32
	Clear      bool
}

// DepthAttachment describes a render pass's depth target, present only for
// the 3D scene pass.
type DepthAttachment struct {
	Clear      bool
	ClearDepth float32
}

// RenderPassDesc configures one BeginRenderPass call. HasDepth is false
// for the UI overlay pass.
type RenderPassDesc struct {
	Label    string
	Color    ColorAttachment
	Depth    DepthAttachment
	HasDepth bool
}

// RenderPass accumulates draw calls between BeginRenderPass and End.
type RenderPass interface {
	SetPipeline(p Pipeline)
	SetBindGroup(index uint32, g BindGroup)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer)
	DrawIndexed(indexCount, instanceCount uint32)
	End()
}
