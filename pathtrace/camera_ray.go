// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package pathtrace

import "github.com/byvfx/bif/math/lin"

// primaryRay builds a jittered camera ray through pixel (px, py), the
// jitter drawn from the pixel's own RNG stream so anti-aliasing is part of
// the same reproducible sequence as the rest of the path.
func (in *Integrator) primaryRay(px, py int, r *rng) *lin.Ray {
	jx, jy := r.Float64x2()
	ndcX := ((float64(px)+jx)/float64(in.width))*2 - 1
	ndcY := 1 - ((float64(py)+jy)/float64(in.height))*2
	return in.Camera.PrimaryRay(ndcX, ndcY)
}
