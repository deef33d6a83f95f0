// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package engine is the driver-facing facade: it owns a scene, a camera,
// and the rasterizer/build-coordinator/path-integrator trio, and exposes
// the small surface (NewScene, SetCamera, SelectMode, Frame, RebuildScene,
// the config setters, Stats) a host application drives once per frame.
//
// It is modeled on the teacher's own Engine/Director split (eng.go), but
// cannot live in package bif itself: accel, buildc, pathtrace, and raster
// all import bif for its Scene/Instance/Material/Prototype vocabulary (the
// same one-directional shape the teacher's render/device packages have
// toward vu's asset types), so a facade that wires all of them together
// has to sit one level above bif, not inside it, or the import graph
// cycles back on itself. See DESIGN.md's C6/facade entry for the full
// reasoning.
package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/accel"
	"github.com/byvfx/bif/buildc"
	"github.com/byvfx/bif/math/lin"
	"github.com/byvfx/bif/pathtrace"
	"github.com/byvfx/bif/raster"
)

// Mode selects which of the two renderers Frame drives.
type Mode int

const (
	// ModeRasterize drives C5's instanced rasterizer every frame.
	ModeRasterize Mode = iota
	// ModePathTrace requests a build of the scene's acceleration
	// structure (if needed) and, once it completes, accumulates tiles
	// from C4's path integrator into an off-screen image.
	ModePathTrace
)

// String implements fmt.Stringer for log lines and test failures.
func (m Mode) String() string {
	if m == ModePathTrace {
		return "PathTrace"
	}
	return "Rasterize"
}

// Stats reports the engine's current frame state, surfaced for a UI
// overlay or a test assertion.
type Stats struct {
	Mode       Mode
	Raster     raster.FrameStats
	Build      buildc.State
	TilesDone  int
	TilesTotal int
	LastFrame  time.Duration
}

// Engine wires together a scene, a camera, the rasterizer, the build
// coordinator, and the path integrator behind the small per-frame surface
// a host application drives. One Engine owns one GPU surface's worth of
// rendering state; RebuildScene and NewScene replace the scene in place
// rather than requiring a new Engine.
type Engine struct {
	mu  sync.Mutex
	log *slog.Logger
	cfg bif.Config

	scene  *bif.Scene
	loader bif.SceneLoader
	cam    *lin.Camera
	mode   Mode

	renderer *raster.Renderer
	build    *buildc.Coordinator

	width, height int
	ptJob         *pathtrace.Job
	ptImage       *image.RGBA
	ptTilesDone   int

	lastElapsed time.Duration
}

// NewEngine builds the rasterizer against gpu with room for
// instanceCapacity instances, and starts with an empty scene. loader may
// be nil; RebuildScene then returns an error until one is set via
// SetSceneLoader. log may be nil, in which case slog.Default() is used.
func NewEngine(gpu raster.GPU, instanceCapacity int, loader bif.SceneLoader, log *slog.Logger, attrs ...bif.Attr) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	renderer, err := raster.NewRenderer(gpu, instanceCapacity, log)
	if err != nil {
		return nil, fmt.Errorf("bif: engine: %w", err)
	}
	return &Engine{
		log:      log,
		cfg:      bif.NewConfig(attrs...),
		scene:    bif.NewScene(),
		loader:   loader,
		cam:      lin.NewCamera(),
		renderer: renderer,
		build:    buildc.New(log),
		width:    1,
		height:   1,
	}, nil
}

// SetSceneLoader sets (or replaces) the loader RebuildScene consumes.
func (e *Engine) SetSceneLoader(loader bif.SceneLoader) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loader = loader
}

// NewScene replaces the engine's current scene with an empty one and
// returns it for the caller to populate directly (AddPrototype/
// AddInstance), invalidating any in-flight or completed build.
func (e *Engine) NewScene() *bif.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = bif.NewScene()
	e.invalidateBuildLocked()
	return e.scene
}

// RebuildScene reloads the scene from the configured SceneLoader,
// replacing the current scene wholesale and invalidating any in-flight
// or completed build.
func (e *Engine) RebuildScene(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loader == nil {
		return fmt.Errorf("bif: RebuildScene: no scene loader configured")
	}
	raw, err := e.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("bif: RebuildScene: load: %w", err)
	}
	scene, err := bif.Build(raw, e.log)
	if err != nil {
		return fmt.Errorf("bif: RebuildScene: %w", err)
	}
	e.scene = scene
	e.invalidateBuildLocked()
	e.log.Info("scene rebuilt", "instances", scene.InstanceCount())
	return nil
}

// SetCamera replaces the engine's camera.
func (e *Engine) SetCamera(cam *lin.Camera) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cam = cam
}

// Camera returns the engine's current camera.
func (e *Engine) Camera() *lin.Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cam
}

// Resize sets the path tracer's output image dimensions. It has no
// effect on the rasterizer, which renders directly to the GPU surface at
// whatever size the driver's swapchain is. Resizing discards any
// in-progress path-trace accumulation.
func (e *Engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	e.width, e.height = width, height
	e.ptJob = nil
	e.ptImage = nil
}

// SelectMode switches the active renderer. Per spec, a mode switch
// invalidates any in-flight build; the worker is left to finish and its
// result is simply never read.
func (e *Engine) SelectMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m == e.mode {
		return
	}
	e.mode = m
	e.invalidateBuildLocked()
	e.log.Info("render mode changed", "mode", m)
}

func (e *Engine) invalidateBuildLocked() {
	e.build.Invalidate()
	e.ptJob = nil
	e.ptImage = nil
	e.ptTilesDone = 0
}

// SetPolygonBudget adjusts the rasterizer's LOD triangle budget.
func (e *Engine) SetPolygonBudget(triangles int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = e.cfg.With(bif.PolygonBudget(triangles))
}

// SetSamplesPerPixel adjusts the path tracer's target sample count,
// discarding any in-progress accumulation so the next frame restarts at
// the new quality level.
func (e *Engine) SetSamplesPerPixel(spp int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = e.cfg.With(bif.SamplesPerPixel(spp))
	e.ptJob = nil
	e.ptImage = nil
}

// SetMaxDepth adjusts the path tracer's maximum bounce depth, discarding
// any in-progress accumulation.
func (e *Engine) SetMaxDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = e.cfg.With(bif.MaxDepth(depth))
	e.ptJob = nil
	e.ptImage = nil
}

// Frame runs one iteration of whichever mode is active. elapsed is the
// time since the previous Frame call, recorded for Stats; it isn't used
// to drive any animation or physics, since those are out of scope.
func (e *Engine) Frame(elapsed time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastElapsed = elapsed
	switch e.mode {
	case ModeRasterize:
		return e.frameRasterizeLocked()
	case ModePathTrace:
		return e.framePathTraceLocked()
	default:
		return fmt.Errorf("bif: unknown render mode %v", e.mode)
	}
}

func (e *Engine) frameRasterizeLocked() error {
	return e.renderer.Frame(e.scene, e.cam, uint64(e.cfg.PolygonBudget()), nil)
}

func (e *Engine) framePathTraceLocked() error {
	switch e.build.Poll() {
	case buildc.NotStarted:
		e.build.Request(e.scene, accel.Options{})
	case buildc.Building:
		// Nothing to draw yet; the caller keeps showing the last Image().
	case buildc.Complete:
		if e.ptJob == nil {
			ac, _ := e.build.Result()
			cfg := pathtrace.ConfigFrom(e.cfg.SamplesPerPixel(), e.cfg.MaxDepth(), e.cfg.MinRRBounces(), e.cfg.FireflyClampValue())
			in := pathtrace.New(e.scene, ac, e.cam, cfg)
			e.ptJob = in.Render(e.width, e.height)
			e.ptImage = image.NewRGBA(image.Rect(0, 0, e.width, e.height))
			e.ptTilesDone = 0
		}
		e.drainTilesLocked()
	case buildc.Failed:
		return fmt.Errorf("bif: path trace unavailable: %w", e.build.Err())
	}
	return nil
}

func (e *Engine) drainTilesLocked() {
	for {
		res, ok := e.ptJob.Poll()
		if !ok {
			return
		}
		compositeTile(e.ptImage, res)
		e.ptTilesDone++
	}
}

// compositeTile writes one tightly-packed RGB8 tile into dst's RGBA
// pixels at the tile's offset, filling alpha opaque.
func compositeTile(dst *image.RGBA, res pathtrace.TileResult) {
	t := res.Tile
	for y := 0; y < t.H; y++ {
		srcRow := res.Pixels[y*t.W*3 : (y+1)*t.W*3]
		dstOff := dst.PixOffset(t.X, t.Y+y)
		for x := 0; x < t.W; x++ {
			dst.Pix[dstOff+4*x+0] = srcRow[3*x+0]
			dst.Pix[dstOff+4*x+1] = srcRow[3*x+1]
			dst.Pix[dstOff+4*x+2] = srcRow[3*x+2]
			dst.Pix[dstOff+4*x+3] = 255
		}
	}
}

// Image returns the path tracer's current accumulation buffer and true,
// or nil, false if the engine isn't in ModePathTrace or no tiles have
// arrived yet.
func (e *Engine) Image() (*image.RGBA, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ptImage == nil || e.ptTilesDone == 0 {
		return nil, false
	}
	return e.ptImage, true
}

// Stats reports the engine's current frame state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Stats{
		Mode:      e.mode,
		Build:     e.build.State(),
		LastFrame: e.lastElapsed,
	}
	if e.renderer != nil {
		st.Raster = e.renderer.Stats
	}
	if e.ptJob != nil {
		st.TilesDone, st.TilesTotal = e.ptTilesDone, e.ptJob.Total
	}
	return st
}
