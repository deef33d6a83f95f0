// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"encoding/binary"
	"math"

	"github.com/byvfx/bif"
)

// materialUniformSize is the byte size of one material's packed uniform
// block. WGSL uniform buffers round struct fields up to 16-byte alignment
// per member for anything that isn't itself vec4-sized, so base color,
// metallic/roughness/specular, and emissive are each padded out to a
// vec4 rather than tightly packed.
const materialUniformSize = 4 * 16

// packMaterial writes m's shading parameters into dst (which must be at
// least materialUniformSize bytes) in the std140-style layout a render
// pipeline's fragment shader expects:
//
//	vec4 baseColor   (rgb, opacity)
//	vec4 params      (metallic, roughness, specular F0, sheen)
//	vec4 emissive    (rgb, unused)
//	vec4 _pad
func packMaterial(dst []byte, m *bif.Material) {
	const dielectricF0 = 0.04
	put4f(dst[0:], m.BaseColor.R, m.BaseColor.G, m.BaseColor.B, m.Opacity)
	put4f(dst[16:], m.Metallic, m.Roughness, dielectricF0, m.Sheen)
	put4f(dst[32:], m.Emissive.R, m.Emissive.G, m.Emissive.B, 0)
	// dst[48:64] is explicit padding, left zeroed.
}

func put4f(dst []byte, a, b, c, d float32) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(a))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(b))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(c))
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(d))
}
