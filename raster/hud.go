// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// hud.go rasterizes the UI overlay pass's frame-stats text (visible/near/
// far instance counts) using basicfont.Face7x13, the same dependency the
// teacher pulls in for 3D-model label text (load/ttf.go) repurposed here
// since there's no authored TTF asset in scope. The resulting *image.RGBA
// is handed to the driver to upload into whatever texture backs the UI
// pipeline's bind group; this package stops at producing the pixels.

// RenderHUD draws stats as a single line of white text on a transparent
// background, sized exactly to the rendered glyphs plus a small margin.
func RenderHUD(stats FrameStats) *image.RGBA {
	text := fmt.Sprintf("visible %d  near %d  far %d", stats.Visible, stats.Near, stats.Far)
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 8
	height := face.Height + 8
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(height - 6)},
	}
	d.DrawString(text)
	return img
}

// compositeHUD draws src over dst at (x, y), placing the HUD bitmap on a
// CPU-side image without a real GPU overlay pass.
func compositeHUD(dst draw.Image, src *image.RGBA, x, y int) {
	r := image.Rect(x, y, x+src.Bounds().Dx(), y+src.Bounds().Dy())
	draw.Draw(dst, r, src, image.Point{}, draw.Over)
}
