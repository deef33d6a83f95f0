// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package pathtrace

import "github.com/byvfx/bif/math/lin"

// trace walks one camera path, accumulating emitted radiance at each
// bounce and terminating by MaxDepth or Russian roulette, whichever comes
// first.
func (in *Integrator) trace(ray *lin.Ray, r *rng) lin.V3 {
	radiance := lin.V3{}
	throughput := lin.V3{X: 1, Y: 1, Z: 1}

	for depth := 0; depth < in.Config.MaxDepth; depth++ {
		hit, ok := in.Accel.Intersect(ray)
		if !ok {
			br, bg, bb := in.Scene.Background()
			bg3 := lin.V3{X: float64(br), Y: float64(bg), Z: float64(bb)}
			radiance = add(radiance, mulV(throughput, bg3))
			break
		}

		mat := hit.Material
		emissive := lin.V3{X: float64(mat.Emissive.R), Y: float64(mat.Emissive.G), Z: float64(mat.Emissive.B)}
		radiance = add(radiance, mulV(throughput, emissive))

		surf := surfaceFrom(mat, hit.Normal)
		wo := scale(*ray.Dir, -1)
		wo.Unit()
		sample, ok := sampleBSDF(surf, wo, r)
		if !ok {
			break
		}
		throughput = mulV(throughput, sample.Value)

		if depth >= in.Config.MinRRBounces {
			survive := clamp(luminance(throughput), 0.05, 0.95)
			if r.Float64() > survive {
				break
			}
			throughput = scale(throughput, 1/survive)
		}

		origin := hit.Point
		offsetOrigin := add(origin, scale(hit.Normal, 1e-4))
		ray = lin.NewRay(&offsetOrigin, &sample.Dir)
	}
	return radiance
}
