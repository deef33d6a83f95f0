// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package buildc keeps the interactive thread responsive while a heavy
// scene's acceleration structure builds off-thread. It is the state
// machine behind switching to the path tracer: NotStarted, Building,
// Complete, Failed, per scene+renderer pair.
//
// The handoff is grounded on the teacher's loader.go goroutine+channel
// idiom (a chan msg work request, a completion channel the worker sends
// its result back over) generalized one step further: loader.go's
// machine.startup always blocks on <-m.reqs because the render thread
// has nothing better to do between frames, but the interactive thread
// here must keep driving C5 every frame, so Poll uses a non-blocking
// select/default instead of a bare receive.
package buildc

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/byvfx/bif"
	"github.com/byvfx/bif/accel"
	"github.com/byvfx/bif/math/lin"
)

// State is one of the four build-coordinator states.
type State int

const (
	// NotStarted means no build is in flight; the path tracer is
	// unavailable until a Request succeeds.
	NotStarted State = iota
	// Building means a worker is constructing the acceleration
	// structure from a snapshot; the caller must not block on it.
	Building
	// Complete means the worker delivered a ready acceleration
	// structure; Result returns it.
	Complete
	// Failed means the worker reported an error; Err returns it. A
	// fresh Request is required to retry.
	Failed
)

// String implements fmt.Stringer for log lines and test failures.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Building:
		return "Building"
	case Complete:
		return "Complete"
	case Failed:
		return "Failed"
	default:
		return "unknown"
	}
}

// msg is the completion message a build worker sends back; buildc only
// ever has one concrete message type, but it's named msg to match the
// teacher's dispatch idiom (vu.go's `switch t := req.(type)`) in case a
// later message kind (e.g. progress) is added.
type msg interface{}

// buildDone is the only msg buildc's worker ever sends.
type buildDone struct {
	result accel.Accel
	err    error
}

// Coordinator tracks one scene+renderer pair's off-thread build. It is
// not safe for concurrent Request/Poll/Cancel calls from multiple
// goroutines other than the single interactive thread that owns it; the
// build worker itself only ever touches the snapshot and the done
// channel, never the Coordinator.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	result accel.Accel
	err    error

	generation uint64       // scene.Generation() this build targets.
	cancelled  *atomic.Bool // set on Cancel/Request-while-building; polled by the worker.
	done       chan msg     // worker -> Poll completion channel; nil unless Building.

	log *slog.Logger
}

// New returns a Coordinator in state NotStarted. log may be nil, in
// which case slog.Default() is used.
func New(log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{state: NotStarted, log: log}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the completed acceleration structure and true if the
// coordinator is in state Complete; otherwise it returns nil, false.
func (c *Coordinator) Result() (accel.Accel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.state == Complete
}

// Err returns the error that moved the coordinator to Failed, or nil.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stale reports whether scene has changed since the build this
// coordinator is tracking (in flight or complete) was requested. A
// caller sees this go true on a structural edit and should Invalidate
// before issuing a fresh Request.
func (c *Coordinator) Stale(scene *bif.Scene) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == NotStarted {
		return false
	}
	return scene.Generation() != c.generation
}

// Request starts a build of scene's acceleration structure on a new
// goroutine, transitioning NotStarted -> Building. A Request while
// already Building cancels the in-flight build first (an edit or mode
// switch invalidates it per spec) before starting the new one.
func (c *Coordinator) Request(scene *bif.Scene, opts accel.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelInFlightLocked()

	snap, err := snapshot(scene)
	if err != nil {
		c.state = Failed
		c.err = fmt.Errorf("buildc: snapshot scene: %w", err)
		c.log.Error("build snapshot failed", "error", c.err)
		return
	}

	cancelled := &atomic.Bool{}
	done := make(chan msg, 1)
	c.state = Building
	c.result = nil
	c.err = nil
	c.generation = scene.Generation()
	c.cancelled = cancelled
	c.done = done

	opts.Cancel = cancelled.Load
	c.log.Info("build requested", "generation", c.generation, "instances", snap.InstanceCount())
	go build(snap, opts, cancelled, done)
}

// build runs on the worker goroutine. It never touches the Coordinator
// directly, only the snapshot it was handed and the completion channel,
// satisfying spec.md's "worker must not hold references to main-thread-
// owned mutable state".
func build(snap *bif.Scene, opts accel.Options, cancelled *atomic.Bool, done chan msg) {
	a, err := accel.New(snap, opts)
	if cancelled.Load() {
		// Cancelled mid-build: finish is fine, but the result must
		// never be surfaced. Don't even bother sending it.
		return
	}
	done <- &buildDone{result: a, err: err}
}

// Poll is called once per frame from the interactive thread. It never
// blocks: a non-blocking select replaces the teacher's loader.go
// pattern of a bare `<-l.loaded` receive, since the interactive thread
// has a frame to render whether or not the build is done yet.
func (c *Coordinator) Poll() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Building || c.done == nil {
		return c.state
	}
	select {
	case m := <-c.done:
		d := m.(*buildDone)
		c.done = nil
		if d.err != nil {
			c.state = Failed
			c.err = fmt.Errorf("buildc: %w", d.err)
			c.log.Error("build failed", "generation", c.generation, "error", c.err)
		} else {
			c.state = Complete
			c.result = d.result
			c.log.Info("build complete", "generation", c.generation)
		}
	default:
		// Worker hasn't finished yet; stay Building.
	}
	return c.state
}

// Cancel invalidates any in-flight build and returns the coordinator to
// NotStarted. Per spec.md §4.6, the worker is permitted to run to
// completion; its result, if it ever arrives, is simply never read
// because the done channel reference is dropped here.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelInFlightLocked()
	c.state = NotStarted
	c.result = nil
	c.err = nil
}

func (c *Coordinator) cancelInFlightLocked() {
	if c.cancelled != nil {
		c.cancelled.Store(true)
	}
	c.cancelled = nil
	c.done = nil
}

// Invalidate is Cancel's name at call sites reacting to a scene edit or
// a renderer-mode switch rather than an explicit user-initiated abort;
// it is identical to Cancel.
func (c *Coordinator) Invalidate() { c.Cancel() }

// snapshot clones the minimum data a build needs: prototypes (material
// included) are shared by pointer (immutable once added, per scene.go),
// instance transforms are cloned by value into a fresh *lin.M4 so the
// worker never observes a main-thread edit made after Request returns.
func snapshot(scene *bif.Scene) (*bif.Scene, error) {
	out := bif.NewScene()
	r, g, b := scene.Background()
	out.SetBackground(r, g, b)

	scene.IterPrototypes(func(p *bif.Prototype) {
		_ = out.AddPrototype(p) // already validated when first added; shared pointer (material included) kept as-is.
	})

	var addErr error
	scene.IterInstances(func(in *bif.Instance) {
		if addErr != nil {
			return
		}
		xf := lin.NewM4().Set(in.Transform)
		if _, err := out.AddInstance(in.Name, in.Prototype.Name, xf); err != nil {
			addErr = err
		}
	})
	if addErr != nil {
		return nil, addErr
	}
	return out, nil
}
