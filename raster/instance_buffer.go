// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

import (
	"encoding/binary"
	"log/slog"
	"math"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/math/lin"
)

// instanceStride is the byte size of one instance's uploaded data: a 4x4
// model matrix as four vec4 attributes, per-instance vertex-step-mode.
const instanceStride = 16 * 4

// InstanceBuffer owns a fixed-capacity COPY_DST buffer of per-instance
// model matrices. Capacity is fixed at creation; Write clamps to it and
// logs rather than reallocating mid-frame, per spec.md §4.5 step 5.
type InstanceBuffer struct {
	buf      Buffer
	capacity int // instances.
	log      *slog.Logger
	scratch  []byte // reused across Write calls to avoid per-frame allocation.
}

// NewInstanceBuffer allocates a buffer sized for capacity instances.
func NewInstanceBuffer(gpu GPU, capacity int, log *slog.Logger) (*InstanceBuffer, error) {
	if log == nil {
		log = slog.Default()
	}
	buf, err := gpu.CreateBuffer(BufferDesc{
		Label: "instance-buffer",
		Size:  uint64(capacity) * instanceStride,
		Usage: UsageVertex | UsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &InstanceBuffer{buf: buf, capacity: capacity, log: log}, nil
}

// Write uploads one model matrix per instance in order, clamping to the
// buffer's capacity and returning bif.ErrInstanceBufferOverflow (after
// logging a warning) when instances exceeds it. The clamped count is
// still written; the caller draws only that many.
func (b *InstanceBuffer) Write(instances []*bif.Instance) (written int, err error) {
	n := len(instances)
	if n > b.capacity {
		b.log.Warn("instance buffer overflow, clamping",
			"visible", n, "capacity", b.capacity)
		err = bif.ErrInstanceBufferOverflow
		n = b.capacity
	}
	need := n * instanceStride
	if cap(b.scratch) < need {
		b.scratch = make([]byte, need)
	}
	b.scratch = b.scratch[:need]
	for i := 0; i < n; i++ {
		putM4(b.scratch[i*instanceStride:], instances[i].Transform)
	}
	if werr := b.buf.Write(0, b.scratch); werr != nil {
		return n, werr
	}
	return n, err
}

// putM4 writes m's sixteen components as little-endian float32s, row by
// row (X, Y, Z, then W), the layout a wgpu vertex shader reads as four
// vec4 attributes.
func putM4(dst []byte, m *lin.M4) {
	vals := [16]float64{
		m.Xx, m.Xy, m.Xz, m.Xw,
		m.Yx, m.Yy, m.Yz, m.Yw,
		m.Zx, m.Zy, m.Zz, m.Zw,
		m.Wx, m.Wy, m.Wz, m.Ww,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(float32(v)))
	}
}
