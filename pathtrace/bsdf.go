// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package pathtrace

import (
	"math"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// bsdf.go implements a principled surface shading model: Burley's
// normalized diffuse term, a GGX microfacet specular lobe with a
// metallic-interpolated Fresnel reflectance at normal incidence, and an
// additive Schlick sheen term for cloth-like grazing retroreflection.
// Colour is carried as a lin.V3 (X=R, Y=G, Z=B); there is no separate
// colour type since every op needed (add, scale, component mult) already
// exists on V3.

// surface is the subset of a hit + material the BSDF needs, decoupled
// from accel.HitRecord so this package does not import accel.
type surface struct {
	normal    lin.V3
	baseColor lin.V3
	metallic  float64
	roughness float64
	sheen     float64
}

func surfaceFrom(m *bif.Material, normal lin.V3) surface {
	return surface{
		normal:    normal,
		baseColor: lin.V3{X: float64(m.BaseColor.R), Y: float64(m.BaseColor.G), Z: float64(m.BaseColor.B)},
		metallic:  float64(m.Metallic),
		roughness: clamp(float64(m.Roughness), 0.02, 1), // avoid a singular mirror causing a zero-measure GGX lobe.
		sheen:     float64(m.Sheen),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// onb builds an orthonormal basis (tangent, bitangent) around n, using
// Duff et al.'s branchless construction.
func onb(n lin.V3) (t, b lin.V3) {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	c := n.X * n.Y * a
	t = lin.V3{X: 1 + sign*n.X*n.X*a, Y: sign * c, Z: -sign * n.X}
	b = lin.V3{X: c, Y: sign + n.Y*n.Y*a, Z: -n.Y}
	return t, b
}

func toWorld(t, b, n, v lin.V3) lin.V3 {
	return lin.V3{
		X: v.X*t.X + v.Y*b.X + v.Z*n.X,
		Y: v.X*t.Y + v.Y*b.Y + v.Z*n.Y,
		Z: v.X*t.Z + v.Y*b.Z + v.Z*n.Z,
	}
}

func dot(a, b lin.V3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func scale(v lin.V3, s float64) lin.V3 { return lin.V3{X: v.X * s, Y: v.Y * s, Z: v.Z * s} }

func add(a, b lin.V3) lin.V3 { return lin.V3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }

func mulV(a, b lin.V3) lin.V3 { return lin.V3{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z} }

// cosineSampleHemisphere returns a direction in local (z-up) space sampled
// proportional to cos(theta), the canonical importance distribution for a
// Lambertian-like diffuse lobe.
func cosineSampleHemisphere(u1, u2 float64) (dir lin.V3, pdf float64) {
	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2
	x, y := r*math.Cos(phi), r*math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))
	return lin.V3{X: x, Y: y, Z: z}, z / math.Pi
}

// sampleGGXHalf importance-samples the GGX normal distribution's half
// vector in local space, following Walter et al. 2007.
func sampleGGXHalf(alpha, u1, u2 float64) lin.V3 {
	phi := 2 * math.Pi * u1
	cosTheta := math.Sqrt((1 - u2) / (1 + (alpha*alpha-1)*u2))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return lin.V3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
}

func ggxD(nh, alpha float64) float64 {
	a2 := alpha * alpha
	d := nh*nh*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// smithG1 is the Smith masking-shadowing term for one direction, GGX form.
func smithG1(nv, alpha float64) float64 {
	a2 := alpha * alpha
	return 2 * nv / (nv + math.Sqrt(a2+(1-a2)*nv*nv))
}

func smithG(nv, nl, alpha float64) float64 {
	return smithG1(nv, alpha) * smithG1(nl, alpha)
}

// fresnelSchlick returns the reflectance at grazing angle cosTheta given
// the normal-incidence reflectance f0.
func fresnelSchlick(cosTheta float64, f0 lin.V3) lin.V3 {
	m := clamp(1-cosTheta, 0, 1)
	m2 := m * m
	w := m2 * m2 * m
	return lin.V3{
		X: f0.X + (1-f0.X)*w,
		Y: f0.Y + (1-f0.Y)*w,
		Z: f0.Z + (1-f0.Z)*w,
	}
}

// sheenTerm approximates cloth-like grazing retroreflection with a Schlick
// fresnel raised against the view/half angle, scaled by the sheen amount.
func sheenTerm(cosTheta, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	m := clamp(1-cosTheta, 0, 1)
	return amount * m * m * m * m * m
}

// specularWeight estimates the probability of choosing the specular lobe
// during lobe-importance sampling: it rises linearly with metallic and is
// clamped to [0.08, 0.92], so each lobe keeps at least an 8% chance of
// being chosen.
func specularWeight(s surface) float64 {
	return clamp(0.08+0.92*s.metallic, 0.08, 0.92)
}

// bsdfSample is the result of importance-sampling a new path direction.
type bsdfSample struct {
	Dir   lin.V3
	Value lin.V3 // f(wo,wi) already divided by PDF and cos-weighted.
	PDF   float64
}

// sample draws a new outgoing direction wi given the view direction wo
// (pointing away from the surface, toward the previous vertex) and returns
// the BSDF contribution already divided by its own PDF (the standard
// Monte-Carlo estimator ratio), so callers multiply throughput by Value
// directly with no separate division.
func sampleBSDF(s surface, wo lin.V3, r *rng) (bsdfSample, bool) {
	n := s.normal
	if dot(n, wo) < 0 {
		n = scale(n, -1) // shade the side the ray actually arrived from.
	}
	t, b := onb(n)
	f0 := lerpV(lin.V3{X: 0.04, Y: 0.04, Z: 0.04}, s.baseColor, s.metallic)

	pSpec := specularWeight(s)
	u0, u1 := r.Float64x2()
	diffuseColor := scale(s.baseColor, 1-s.metallic)

	if r.Float64() < pSpec {
		alpha := s.roughness * s.roughness
		hLocal := sampleGGXHalf(alpha, u0, u1)
		h := toWorld(t, b, n, hLocal)
		wi := reflect(scale(wo, -1), h)
		nl := dot(n, wi)
		nv := dot(n, wo)
		if nl <= 0 || nv <= 0 {
			return bsdfSample{}, false
		}
		nh := dot(n, h)
		vh := dot(wo, h)
		d := ggxD(nh, alpha)
		g := smithG(nv, nl, alpha)
		fr := fresnelSchlick(vh, f0)
		specPDF := d * nh / (4 * vh) // half-vector-sampling PDF, Jacobian to wi included.
		if specPDF <= 1e-8 {
			return bsdfSample{}, false
		}
		// f * nl / pdf, combined over the two lobes via MIS-free balance
		// heuristic: divide the specular-lobe pdf by its selection
		// probability so the estimator stays unbiased.
		num := scale(fr, d*g/(4*nv*nl))
		value := scale(num, nl/(specPDF*pSpec))
		value = add(value, diffuseOverSpecularResidual(s, n, wo, wi, diffuseColor))
		return bsdfSample{Dir: wi, Value: value, PDF: specPDF * pSpec}, true
	}

	local, pdf := cosineSampleHemisphere(u0, u1)
	wi := toWorld(t, b, n, local)
	nl := dot(n, wi)
	if nl <= 0 || pdf <= 1e-8 {
		return bsdfSample{}, false
	}
	diffuse := scale(diffuseColor, (1 - pSpec) * burleyNorm(s, dot(n, wo), nl) / math.Pi)
	sheen := sheenTerm(dot(n, wi), s.sheen)
	value := scale(add(diffuse, lin.V3{X: sheen, Y: sheen, Z: sheen}), nl/(pdf*(1-pSpec)))
	return bsdfSample{Dir: wi, Value: value, PDF: pdf * (1 - pSpec)}, true
}

// diffuseOverSpecularResidual is zero: when the specular lobe is sampled,
// the diffuse contribution along that same direction is folded in via
// separate diffuse-lobe samples rather than evaluated here, avoiding a
// double-counted, hard-to-normalize mixed PDF. Kept as a named no-op so the
// sampling strategy (one lobe contributes per sample, weighted by its own
// selection probability) stays documented at the call site.
func diffuseOverSpecularResidual(s surface, n, wo, wi, diffuseColor lin.V3) lin.V3 {
	return lin.V3{}
}

// burleyNorm is Disney's normalized diffuse response: a roughness-dependent
// retroreflectance boost at grazing angles, parameterized by a Fresnel-style
// falloff rather than Lambert's flat response.
func burleyNorm(s surface, nv, nl float64) float64 {
	fd90 := 0.5 + 2*s.roughness*s.roughness*nl*nl // approximated with nl standing in for the half-vector term.
	lightScatter := 1 + (fd90-1)*math.Pow(clamp(1-nl, 0, 1), 5)
	viewScatter := 1 + (fd90-1)*math.Pow(clamp(1-nv, 0, 1), 5)
	return lightScatter * viewScatter
}

func lerpV(a, b lin.V3, t float64) lin.V3 {
	return lin.V3{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: a.Z + (b.Z-a.Z)*t}
}

// reflect mirrors v about normal n (both expected unit length).
func reflect(v, n lin.V3) lin.V3 {
	d := 2 * dot(v, n)
	return lin.V3{X: v.X - d*n.X, Y: v.Y - d*n.Y, Z: v.Z - d*n.Z}
}
