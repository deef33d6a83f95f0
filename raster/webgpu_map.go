// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import "github.com/cogentcore/webgpu/wgpu"

// webgpu_map.go translates this package's backend-neutral enums into
// github.com/cogentcore/webgpu/wgpu's vocabulary, the one piece of this
// package that names the real library directly rather than going through
// the GPU interface — a cmd/ driver adapting a real wgpu.Device calls
// these when filling in its own PipelineDesc translation. Grounded on
// cogentcore-core/gpu/gpu_test.go's `wgpu.CullModeNone` usage, the only
// concrete wgpu identifier present anywhere in the retrieval pack; the
// rest of the mapping follows the WebGPU spec's own enum names, which
// cogentcore/webgpu binds close to verbatim.
func toWGPUCullMode(m CullMode) wgpu.CullMode {
	if m == CullBack {
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func toWGPUFrontFace() wgpu.FrontFace {
	// C2's triangulation always pre-flips left-handed input, so the
	// rasterizer's front face is unconditionally counter-clockwise.
	return wgpu.FrontFaceCCW
}

func toWGPUCompareFunction(d DepthCompare) wgpu.CompareFunction {
	if d == DepthCompareLess {
		return wgpu.CompareFunctionLess
	}
	return wgpu.CompareFunctionAlways
}
