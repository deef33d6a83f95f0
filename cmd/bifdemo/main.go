// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Command bifdemo drives an Engine against a FixtureLoader grid scene for
// a fixed number of frames, printing frame stats as it goes. It stands
// in for the teacher's eg/ example programs: there is no real wgpu
// surface to present to (windowing is out of scope), so it wires the
// engine against a stubGPU that only records what would have happened.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/engine"
	"github.com/byvfx/bif/math/lin"
	"github.com/byvfx/bif/raster"
)

// stubGPU is the minimal GPU a demo without a real window can use: every
// method succeeds and records nothing but a frame count, since there is
// no surface to present frames into.
type stubGPU struct{ frames int }

type stubBuffer struct{ size uint64 }

func (b *stubBuffer) Write(uint64, []byte) error { return nil }
func (b *stubBuffer) Size() uint64               { return b.size }

func (g *stubGPU) CreateBuffer(desc raster.BufferDesc) (raster.Buffer, error) {
	return &stubBuffer{size: desc.Size}, nil
}
func (g *stubGPU) CreateBindGroup(raster.BindGroupDesc) (raster.BindGroup, error) { return nil, nil }
func (g *stubGPU) CreatePipeline(raster.PipelineDesc) (raster.Pipeline, error)    { return nil, nil }
func (g *stubGPU) BeginRenderPass(raster.RenderPassDesc) (raster.RenderPass, error) {
	return &stubPass{}, nil
}
func (g *stubGPU) Present() error { g.frames++; return nil }

type stubPass struct{}

func (p *stubPass) SetPipeline(raster.Pipeline)                  {}
func (p *stubPass) SetBindGroup(uint32, raster.BindGroup)        {}
func (p *stubPass) SetVertexBuffer(uint32, raster.Buffer)        {}
func (p *stubPass) SetIndexBuffer(raster.Buffer)                 {}
func (p *stubPass) DrawIndexed(indexCount, instanceCount uint32) {}
func (p *stubPass) End()                                         {}

func main() {
	gridSize := flag.Int("grid", 6, "fixture grid side length")
	frames := flag.Int("frames", 120, "number of frames to run")
	pathTrace := flag.Bool("pathtrace", false, "switch to the path-traced reference renderer")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	eng, err := engine.NewEngine(&stubGPU{}, 4096, &bif.FixtureLoader{GridSize: *gridSize, Spacing: 3}, log,
		bif.PolygonBudget(250_000),
		bif.SamplesPerPixel(16),
		bif.MaxDepth(6),
	)
	if err != nil {
		log.Error("new engine", "error", err)
		os.Exit(1)
	}
	if err := eng.RebuildScene(context.Background()); err != nil {
		log.Error("rebuild scene", "error", err)
		os.Exit(1)
	}

	cam := lin.NewCamera()
	cam.Distance = float64(*gridSize) * 4
	cam.SetPerspective(60, 16.0/9.0, 0.1, 1000)
	eng.SetCamera(cam)

	if *pathTrace {
		eng.Resize(640, 360)
		eng.SelectMode(engine.ModePathTrace)
	}

	tick := 16 * time.Millisecond
	for i := 0; i < *frames; i++ {
		if err := eng.Frame(tick); err != nil {
			log.Error("frame", "index", i, "error", err)
			os.Exit(1)
		}
		if i%30 == 0 {
			log.Info("frame", "index", i, "stats", eng.Stats())
		}
	}
	log.Info("done", "stats", eng.Stats())
}
