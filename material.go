// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bif

// Material is a principled/metallic-roughness surface description, bound
// to a Prototype and so shared by every Instance of it. Colours are
// linear, not sRGB encoded; sRGB encoding happens at the rasterizer's
// swapchain format or the path tracer's tonemap step, not here.
type Material struct {
	Name string

	BaseColor rgb     // Albedo for dielectrics, F0 tint for metals.
	Metallic  float32 // 0 (dielectric) to 1 (metal).
	Roughness float32 // 0 (mirror) to 1 (fully rough).
	Sheen     float32 // 0 disables the sheen lobe.
	Emissive  rgb     // Added unconditionally, unaffected by lighting.

	Opacity float32 // 1 is fully opaque.

	// AlbedoTexture, when non-nil, modulates BaseColor per-fragment/per-hit
	// via bilinear, wrap-addressed sampling.
	AlbedoTexture *Texture
}

// NewMaterial returns a fully-opaque white dielectric material, the
// reasonable default for geometry with no authored material binding.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		BaseColor: rgb{1, 1, 1},
		Metallic:  0,
		Roughness: 0.5,
		Opacity:   1,
	}
}

// SetBaseColor sets the material's albedo/F0 tint.
func (m *Material) SetBaseColor(r, g, b float32) { m.BaseColor = rgb{r, g, b} }

// SetEmissive sets the material's emitted radiance; any non-zero component
// makes the surface emit light in the path integrator.
func (m *Material) SetEmissive(r, g, b float32) { m.Emissive = rgb{r, g, b} }

// rgb holds linear colour where each field is ordinarily in [0, 1], though
// Emissive may exceed 1 to represent an actual light source.
type rgb struct {
	R, G, B float32
}

// isUnset returns true if all of the colours are zero.
func (c rgb) isUnset() bool { return c.R == 0 && c.G == 0 && c.B == 0 }
