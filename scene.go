// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bif

import (
	"fmt"
	"sync"

	"github.com/byvfx/bif/math/lin"
)

// Vertex is one corner of a triangle: position and normal in the
// prototype's local space, plus a texture coordinate.
type Vertex struct {
	Pos  lin.V3
	Norm lin.V3
	U, V float32
}

// Prototype is triangulated geometry shared by every Instance that
// references it, plus the material every such instance renders with.
// Prototypes are never mutated after a Scene finishes building, except by
// BindMaterial; accel and raster hold the *Prototype pointer directly
// rather than copying its data, relying on Go's garbage collector for the
// shared ownership spec.md's data model calls for.
type Prototype struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32 // triangle list, len a multiple of 3.
	Bounds   *lin.Box3
	Material *Material
}

// Triangles returns the number of triangles in the prototype.
func (p *Prototype) Triangles() int { return len(p.Indices) / 3 }

// Triangle returns the three local-space vertex positions of triangle i.
func (p *Prototype) Triangle(i int) (a, b, c lin.V3) {
	i0, i1, i2 := p.Indices[3*i], p.Indices[3*i+1], p.Indices[3*i+2]
	return p.Vertices[i0].Pos, p.Vertices[i1].Pos, p.Vertices[i2].Pos
}

// Instance places one copy of a Prototype in the scene with its own
// transform. An instance owns no geometry and no material: every instance
// of the same prototype renders with that prototype's bound material, so
// rebinding the prototype's material (BindMaterial) changes every instance
// of it at once.
type Instance struct {
	Name      string
	Prototype *Prototype
	Transform *lin.M4
}

// WorldBounds returns the instance's world-space AABB: the prototype's
// local bounds carried through the instance transform with the required
// eight-corner re-tighten.
func (in *Instance) WorldBounds() *lin.Box3 {
	return lin.NewBox3().Transform(in.Prototype.Bounds, in.Transform)
}

// Scene is the flat prototype+instance graph: every instance directly
// names its prototype, with no parent/child transform hierarchy, since an
// imported USD scene's instancing already IS the hierarchy spec.md cares
// about — there's no separate scene-graph nesting to preserve above it.
type Scene struct {
	mu         sync.RWMutex
	prototypes map[string]*Prototype
	instances  []*Instance
	generation uint64
	background rgb // radiance returned for rays that escape the scene.
}

// SetBackground sets the linear-RGB radiance returned for camera/path rays
// that exit the scene without hitting geometry.
func (s *Scene) SetBackground(r, g, b float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = rgb{r, g, b}
}

// Background returns the current background radiance.
func (s *Scene) Background() (r, g, b float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background.R, s.background.G, s.background.B
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{
		prototypes: make(map[string]*Prototype),
	}
}

// AddPrototype registers a prototype by name, replacing any prior
// prototype with the same name and bumping Generation. A prototype added
// with no Material set renders with the default material until a
// BindMaterial call gives it one.
func (s *Scene) AddPrototype(p *Prototype) error {
	if len(p.Vertices) == 0 || len(p.Indices) == 0 || len(p.Indices)%3 != 0 {
		return fmt.Errorf("bif: add prototype %s: %w", p.Name, ErrInvalidGeometry)
	}
	if p.Bounds == nil {
		p.Bounds = boundsOf(p.Vertices)
	}
	if p.Material == nil {
		p.Material = defaultMaterial
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prototypes[p.Name] = p
	s.generation++
	return nil
}

// BindMaterial replaces protoName's material, taking effect for every
// instance of that prototype. Returns ErrUnknownPrototype if protoName is
// not a live prototype.
func (s *Scene) BindMaterial(protoName string, m *Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proto, ok := s.prototypes[protoName]
	if !ok {
		return fmt.Errorf("bif: bind material %s: %w", protoName, ErrUnknownPrototype)
	}
	proto.Material = m
	s.generation++
	return nil
}

// AddInstance places protoName at transform xf. Returns ErrUnknownPrototype
// if protoName was never added.
func (s *Scene) AddInstance(name, protoName string, xf *lin.M4) (*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proto, ok := s.prototypes[protoName]
	if !ok {
		return nil, fmt.Errorf("bif: add instance %s: %w", name, ErrUnknownPrototype)
	}
	in := &Instance{Name: name, Prototype: proto, Transform: xf}
	s.instances = append(s.instances, in)
	s.generation++
	return in, nil
}

// Generation returns a counter that increments on every structural change
// (prototype/material/instance add). The build coordinator (buildc)
// compares this against the generation its last build targeted to decide
// whether a rebuild is needed; the rasterizer re-culls and re-uploads
// every frame and does not read it.
func (s *Scene) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// IterInstances calls fn for every instance currently in the scene. fn
// must not add or remove instances.
func (s *Scene) IterInstances(fn func(*Instance)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, in := range s.instances {
		fn(in)
	}
}

// IterPrototypes calls fn for every prototype currently in the scene.
func (s *Scene) IterPrototypes(fn func(*Prototype)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.prototypes {
		fn(p)
	}
}

// Prototype looks up a prototype by name.
func (s *Scene) Prototype(name string) (*Prototype, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prototypes[name]
	return p, ok
}

// InstanceCount returns the number of instances in the scene.
func (s *Scene) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

var defaultMaterial = NewMaterial("__default__")

// boundsOf computes the tight local-space AABB of a vertex slice.
func boundsOf(vs []Vertex) *lin.Box3 {
	b := lin.NewBox3()
	for i := range vs {
		b.ExtendPoint(&vs[i].Pos)
	}
	return b
}
