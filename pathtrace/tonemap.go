// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package pathtrace

import (
	"math"

	"github.com/byvfx/bif/math/lin"
)

// tonemap.go turns accumulated per-pixel radiance into display-ready sRGB
// bytes: average by sample count, optionally clamp fireflies, encode to
// sRGB, and quantize. Radiance is a lin.V3 with X=R, Y=G, Z=B throughout
// this package, the same convention bsdf.go uses for colour.

// fireflyClamp caps a single sample's radiance before it is accumulated,
// the usual way an unbiased-but-noisy estimator (a stray high-variance
// specular or caustic sample) is kept from dominating a pixel's average. A
// max of 0 disables it.
func fireflyClamp(c lin.V3, max float32) lin.V3 {
	if max <= 0 {
		return c
	}
	m := float64(max)
	lum := luminance(c)
	if lum <= m {
		return c
	}
	return scale(c, m/lum)
}

func luminance(c lin.V3) float64 {
	return 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
}

// toSRGB8 averages sum over n samples, encodes to sRGB, and quantizes to a
// byte per channel using round(c*255.0) as specified.
func toSRGB8(sum lin.V3, n int) (r, g, b byte) {
	inv := 1.0 / float64(n)
	return srgbByte(sum.X * inv), srgbByte(sum.Y * inv), srgbByte(sum.Z * inv)
}

func srgbByte(linear float64) byte {
	encoded := srgbEncode(clamp(linear, 0, 1))
	return byte(math.Round(encoded * 255.0))
}

// srgbEncode applies the IEC 61966-2-1 transfer function.
func srgbEncode(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}
