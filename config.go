// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package bif

// config.go reduces the NewEngine API footprint using functional options.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis
//      https://commandcenter.blogspot.ca/2014/01/self-referential-functions-and-design.html

// Config contains configuration attributes that can be set before running
// the engine.
type Config struct {
	polygonBudget   int     // triangle budget the LOD partition targets.
	samplesPerPixel int     // path tracer samples per pixel.
	maxDepth        int     // path tracer max bounce depth.
	minRRBounces    int     // bounce count before Russian roulette kicks in.
	fireflyClamp    float32 // 0 disables firefly clamping.
}

// configDefaults provides reasonable defaults so the engine runs even if
// no configuration attributes are set.
var configDefaults = Config{
	polygonBudget:   500_000,
	samplesPerPixel: 64,
	maxDepth:        8,
	minRRBounces:    3,
	fireflyClamp:    10,
}

// NewConfig applies attrs over configDefaults and returns the result. The
// engine package (which can't reach Config's unexported fields directly,
// living outside package bif to avoid an import cycle with accel/raster/
// pathtrace) calls this and then reads the result back through the
// accessor methods below.
func NewConfig(attrs ...Attr) Config {
	c := configDefaults
	for _, attr := range attrs {
		attr(&c)
	}
	return c
}

// PolygonBudget returns the configured rasterizer triangle budget.
func (c Config) PolygonBudget() int { return c.polygonBudget }

// SamplesPerPixel returns the configured path tracer sample count.
func (c Config) SamplesPerPixel() int { return c.samplesPerPixel }

// MaxDepth returns the configured path tracer max bounce depth.
func (c Config) MaxDepth() int { return c.maxDepth }

// MinRRBounces returns the configured Russian roulette start bounce.
func (c Config) MinRRBounces() int { return c.minRRBounces }

// FireflyClampValue returns the configured firefly clamp radiance (0
// disables clamping).
func (c Config) FireflyClampValue() float32 { return c.fireflyClamp }

// With returns a copy of c with attrs applied over it, for adjusting one
// or two fields of a live Config without losing the rest.
func (c Config) With(attrs ...Attr) Config {
	for _, attr := range attrs {
		attr(&c)
	}
	return c
}

// Attr defines optional engine attributes.
//
//	eng, err := engine.NewEngine(gpu, instanceCapacity, loader, log,
//	   bif.PolygonBudget(250_000),
//	   bif.SamplesPerPixel(128),
//	   bif.MaxDepth(12),
//	)
type Attr func(*Config)

// PolygonBudget sets the triangle budget the rasterizer's LOD partition
// targets per frame. For use in NewEngine().
func PolygonBudget(triangles int) Attr {
	return func(c *Config) {
		if triangles > 0 {
			c.polygonBudget = triangles
		}
	}
}

// SamplesPerPixel sets the path tracer's samples-per-pixel target.
// For use in NewEngine().
func SamplesPerPixel(spp int) Attr {
	return func(c *Config) {
		if spp > 0 {
			c.samplesPerPixel = spp
		}
	}
}

// MaxDepth sets the path tracer's maximum bounce depth. For use in
// NewEngine().
func MaxDepth(depth int) Attr {
	return func(c *Config) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// RussianRoulette sets the bounce count after which paths are
// stochastically terminated. For use in NewEngine().
func RussianRoulette(minBounces int) Attr {
	return func(c *Config) {
		if minBounces > 0 {
			c.minRRBounces = minBounces
		}
	}
}

// FireflyClamp caps a sample's contribution at the given radiance to
// suppress fireflies; 0 disables clamping. For use in NewEngine().
func FireflyClamp(maxRadiance float32) Attr {
	return func(c *Config) { c.fireflyClamp = maxRadiance }
}
