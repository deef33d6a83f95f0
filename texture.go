// Copyright © 2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bif

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// Texture is 2D image data sampled by materials. A Texture is immutable
// once returned from Load/cache lookup, so concurrent reads by multiple
// path-tracer worker goroutines need no locking; only the cache insert
// itself is guarded.
type Texture struct {
	Path string
	img  image.Image
	w, h int
}

// Width and Height return the texture's pixel dimensions.
func (t *Texture) Width() int  { return t.w }
func (t *Texture) Height() int { return t.h }

// Sample performs bilinear filtering with wrap/repeat addressing at
// texture coordinate (u, v). u, v outside [0, 1) wrap rather than clamp,
// matching the open question resolved in SPEC_FULL.md §9 (bilinear,
// wrap-repeat, no mipmaps).
func (t *Texture) Sample(u, v float64) (r, g, b, a float64) {
	fx := u*float64(t.w) - 0.5
	fy := v*float64(t.h) - 0.5
	x0, y0 := int(floorf(fx)), int(floorf(fy))
	tx, ty := fx-floorf(fx), fy-floorf(fy)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	lerp := func(a, b, f float64) float64 { return a + (b-a)*f }
	r = lerp(lerp(c00[0], c10[0], tx), lerp(c01[0], c11[0], tx), ty)
	g = lerp(lerp(c00[1], c10[1], tx), lerp(c01[1], c11[1], tx), ty)
	b = lerp(lerp(c00[2], c10[2], tx), lerp(c01[2], c11[2], tx), ty)
	a = lerp(lerp(c00[3], c10[3], tx), lerp(c01[3], c11[3], tx), ty)
	return r, g, b, a
}

// texel returns the normalized colour at integer pixel (x, y), wrapping
// both coordinates into range.
func (t *Texture) texel(x, y int) [4]float64 {
	x = wrap(x, t.w)
	y = wrap(y, t.h)
	cr, cg, cb, ca := t.img.At(x+t.img.Bounds().Min.X, y+t.img.Bounds().Min.Y).RGBA()
	const max = float64(0xffff)
	return [4]float64{float64(cr) / max, float64(cg) / max, float64(cb) / max, float64(ca) / max}
}

func wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func floorf(x float64) float64 {
	i := float64(int64(x))
	if x < 0 && i != x {
		i--
	}
	return i
}

// textureCache resolves a path to a shared *Texture. Every lookup takes
// the mutex briefly; decoding runs outside it, so two goroutines that miss
// on the same path at once may both decode, and the first to insert wins.
// Sampling a returned *Texture takes no lock.
type textureCache struct {
	mu    sync.Mutex
	cache map[string]*Texture
}

func newTextureCache() *textureCache {
	return &textureCache{cache: make(map[string]*Texture)}
}

// Load returns the cached *Texture for path, decoding and inserting it if
// this is the first request for that path.
func (c *textureCache) Load(path string) (*Texture, error) {
	c.mu.Lock()
	if t, ok := c.cache[path]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bif: open texture %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("bif: decode texture %s: %w", path, err)
	}
	bounds := img.Bounds()
	t := &Texture{Path: path, img: img, w: bounds.Dx(), h: bounds.Dy()}

	c.mu.Lock()
	if existing, ok := c.cache[path]; ok {
		c.mu.Unlock()
		return existing, nil // another goroutine won the race.
	}
	c.cache[path] = t
	c.mu.Unlock()
	return t, nil
}
