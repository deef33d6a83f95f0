// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package bif

import "errors"

// Sentinel errors returned by this module. Callers should compare with
// errors.Is rather than matching error strings; call sites wrap these with
// fmt.Errorf("...: %w", err) to add context.
var (
	// ErrInvalidGeometry is returned when a prototype's face/vertex data
	// cannot be triangulated: mismatched index counts, a face with fewer
	// than three vertices, or an out-of-range vertex index.
	ErrInvalidGeometry = errors.New("bif: invalid geometry")

	// ErrUnknownPrototype is returned when an instance references a
	// prototype name that was never added to the scene.
	ErrUnknownPrototype = errors.New("bif: unknown prototype")

	// ErrLibraryUnavailable is the error a TLASBuilder returns when its
	// backing library cannot be used. accel.New does not pass it on: it
	// builds with its in-module TLAS builder instead.
	ErrLibraryUnavailable = errors.New("bif: acceleration library unavailable")

	// ErrBuildFailed is returned when an acceleration-structure build is
	// cancelled before it completes.
	ErrBuildFailed = errors.New("bif: build failed")

	// ErrSurfaceLost is returned by a GPU.Present call when the render
	// target surface needs to be reconfigured (e.g. after a resize).
	ErrSurfaceLost = errors.New("bif: surface lost")

	// ErrOutOfMemory is returned when a GPU resource allocation fails.
	ErrOutOfMemory = errors.New("bif: out of memory")

	// ErrInstanceBufferOverflow is returned when more instances are
	// visible than the instance buffer can hold; the renderer clamps to
	// capacity and logs rather than reallocating mid-frame.
	ErrInstanceBufferOverflow = errors.New("bif: instance buffer overflow")
)
