// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package accel builds and traverses a two-level bounding volume
// hierarchy over a scene's instances: a BLAS per prototype in local
// space, and a TLAS over instance leaves in world space. A flat instance
// loop (Fallback) is also available through NewFallback; New never builds
// one itself.
package accel

import (
	"errors"
	"fmt"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// leafThreshold is the triangle (BLAS) or instance (TLAS) count below
// which a node becomes a leaf rather than splitting further.
const leafThreshold = 4

// HitRecord describes the closest ray/scene intersection found by
// Intersect.
type HitRecord struct {
	T        float64
	Point    lin.V3
	Normal   lin.V3 // world-space, via the instance's normal matrix.
	U, V     float32
	Instance *bif.Instance
	Material *bif.Material
}

// Accel is anything that can be intersected with a ray: a TLAS, or the
// Fallback instance loop.
type Accel interface {
	Intersect(ray *lin.Ray) (HitRecord, bool)
}

// TLASBuilder is the capability a real top-level-BVH library would
// provide. This module's own median-split builder (buildTLAS) is a plain
// function that New calls directly and does not implement it; the type
// exists so a future faster builder (or a missing optional
// dependency) can be probed for and substituted without changing New's
// callers, mirroring spec.md's LibraryUnavailable fallback design.
type TLASBuilder interface {
	Build(scene *bif.Scene) (Accel, error)
}

// Options configures New.
type Options struct {
	// Builder, if non-nil, is tried first. A nil Builder, or one that
	// reports bif.ErrLibraryUnavailable, leaves New to the in-module TLAS
	// builder; any other Builder error is returned by New.
	Builder TLASBuilder

	// Cancel, if non-nil, is polled between TLAS partitions (the same
	// points medianSplit already recurses at). A build worker running
	// off the interactive thread wires in an atomic.Bool's Load here so
	// an edit or mode switch can abandon a build already in flight
	// without New itself knowing about threads or channels.
	Cancel func() bool
}

// New builds an acceleration structure for scene. It tries opts.Builder
// first (if given); if that reports bif.ErrLibraryUnavailable, New falls
// back to the in-module TLAS builder, and any other Builder error is
// returned. The in-module builder never fails on a well-formed scene; it
// returns an error only if a prototype's geometry is invalid or
// opts.Cancel reports cancellation mid-build (bif.ErrBuildFailed).
// NewFallback is available
// separately for callers that want the flat per-instance loop directly,
// e.g. to isolate a TLAS traversal bug during development.
func New(scene *bif.Scene, opts Options) (Accel, error) {
	if opts.Builder != nil {
		a, err := opts.Builder.Build(scene)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, bif.ErrLibraryUnavailable) {
			return nil, fmt.Errorf("accel: TLAS builder: %w", err)
		}
		// Builder's library is unavailable; fall through to the built-in
		// path rather than surfacing bif.ErrLibraryUnavailable to the
		// caller, since this module always has a working builder.
	}
	return buildTLAS(scene, opts.Cancel)
}

// blasCache is populated only during New/NewFallback, which run once per
// build before any tracing starts; it is not safe for concurrent builds.
var blasCache = map[*bif.Prototype]*BLAS{}

func blasFor(p *bif.Prototype) (*BLAS, error) {
	if b, ok := blasCache[p]; ok {
		return b, nil
	}
	b, err := buildBLAS(p)
	if err != nil {
		return nil, fmt.Errorf("accel: build BLAS for %s: %w", p.Name, err)
	}
	blasCache[p] = b
	return b, nil
}

// medianSplit partitions items [lo,hi) in place around their median
// centroid value, the nth_element-equivalent used by both the BLAS
// triangle builder and the TLAS instance builder: a build only needs an
// approximately balanced split, not a fully sorted order, so this does a
// Hoare-style quickselect rather than a full sort.
func medianSplit(lo, hi int, centroid func(i int) float64, swap func(i, j int)) int {
	mid := lo + (hi-lo)/2
	for lo < hi-1 {
		p := partition(lo, hi, centroid, swap)
		switch {
		case p == mid:
			return mid
		case p < mid:
			lo = p + 1
		default:
			hi = p
		}
	}
	return mid
}

// partition is a Lomuto-scheme partition of [lo,hi) around the centroid
// value at hi-1, returning the pivot's final index.
func partition(lo, hi int, centroid func(i int) float64, swap func(i, j int)) int {
	pivot := centroid(hi - 1)
	i := lo
	for j := lo; j < hi-1; j++ {
		if centroid(j) < pivot {
			swap(i, j)
			i++
		}
	}
	swap(i, hi-1)
	return i
}
