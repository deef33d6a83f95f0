// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package pathtrace is the CPU reference-image path integrator: a tiled,
// worker-pool-driven Monte Carlo renderer over a scene's acceleration
// structure, using a principled BSDF and a deterministic per-sample RNG so
// renders reproduce exactly across runs.
package pathtrace

import (
	"runtime"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/accel"
	"github.com/byvfx/bif/math/lin"
)

// TileSize is the edge length of a render tile in pixels; tiles are
// clipped against the image bounds at the right and bottom edges.
const TileSize = 64

// Config holds the integrator's sampling parameters. For use with New.
type Config struct {
	SamplesPerPixel int
	MaxDepth        int
	MinRRBounces    int     // bounce count before Russian roulette kicks in.
	FireflyClamp    float32 // 0 disables firefly clamping.
}

// ConfigFrom adapts a bif.Config's sampling fields into a pathtrace.Config,
// keeping the engine-facing option set in one place (bif.Config) while
// letting this package stay independent of the bif facade.
func ConfigFrom(spp, maxDepth, minRR int, fireflyClamp float32) Config {
	return Config{SamplesPerPixel: spp, MaxDepth: maxDepth, MinRRBounces: minRR, FireflyClamp: fireflyClamp}
}

// Integrator renders a scene through a camera into tiles of pixels.
type Integrator struct {
	Scene  *bif.Scene
	Accel  accel.Accel
	Camera *lin.Camera
	Config Config

	width, height int // set by Render; read by primaryRay for NDC mapping.
}

// New returns an Integrator ready to Render against the given scene,
// acceleration structure, and camera.
func New(scene *bif.Scene, ac accel.Accel, cam *lin.Camera, cfg Config) *Integrator {
	if cfg.SamplesPerPixel <= 0 {
		cfg.SamplesPerPixel = 64
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.MinRRBounces <= 0 {
		cfg.MinRRBounces = 3
	}
	return &Integrator{Scene: scene, Accel: ac, Camera: cam, Config: cfg}
}

// Tile is one rectangular region of the output image, clipped to the image
// bounds.
type Tile struct {
	X, Y, W, H int
}

// TileResult carries one finished tile's pixels as tightly packed RGB8
// rows (no padding), W*H*3 bytes.
type TileResult struct {
	Tile   Tile
	Pixels []byte
}

// Job is an in-flight render: tiles stream back on a channel that the
// caller polls once per frame rather than blocking on.
type Job struct {
	results chan TileResult
	Total   int // total tile count, for progress reporting.
}

// Poll returns the next finished tile without blocking. ok is false if no
// tile is ready yet. The results channel is never closed, so the caller
// counts the tiles it has received against Total to know when the job is
// finished.
func (j *Job) Poll() (TileResult, bool) {
	select {
	case r, ok := <-j.results:
		return r, ok
	default:
		return TileResult{}, false
	}
}

// Render dispatches every tile of a width x height image to a
// runtime.GOMAXPROCS(0)-sized worker pool and returns immediately with a
// Job the caller polls for completed tiles.
func (in *Integrator) Render(width, height int) *Job {
	in.width, in.height = width, height
	tiles := buildTiles(width, height)
	work := make(chan Tile, len(tiles))
	results := make(chan TileResult, len(tiles))
	for _, t := range tiles {
		work <- t
	}
	close(work)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(tiles) {
		workers = len(tiles)
	}
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		go in.renderWorker(work, results)
	}
	return &Job{results: results, Total: len(tiles)}
}

func (in *Integrator) renderWorker(work <-chan Tile, results chan<- TileResult) {
	for t := range work {
		results <- in.renderTile(t)
	}
}

func (in *Integrator) renderTile(t Tile) TileResult {
	pixels := make([]byte, t.W*t.H*3)
	spp := in.Config.SamplesPerPixel
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			px, py := t.X+x, t.Y+y
			sum := lin.V3{}
			for s := 0; s < spp; s++ {
				r := newPixelRNG(px, py, s)
				ray := in.primaryRay(px, py, r)
				c := in.trace(ray, r)
				if in.Config.FireflyClamp > 0 {
					c = fireflyClamp(c, in.Config.FireflyClamp)
				}
				sum = add(sum, c)
			}
			ri, gi, bi := toSRGB8(sum, spp)
			off := (y*t.W + x) * 3
			pixels[off], pixels[off+1], pixels[off+2] = ri, gi, bi
		}
	}
	return TileResult{Tile: t, Pixels: pixels}
}

func buildTiles(width, height int) []Tile {
	var tiles []Tile
	for y := 0; y < height; y += TileSize {
		h := TileSize
		if y+h > height {
			h = height - y
		}
		for x := 0; x < width; x += TileSize {
			w := TileSize
			if x+w > width {
				w = width - x
			}
			tiles = append(tiles, Tile{X: x, Y: y, W: w, H: h})
		}
	}
	return tiles
}
