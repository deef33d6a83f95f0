// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package bif

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/byvfx/bif/math/lin"
)

// SceneLoader is consumed by the build coordinator (C6) to obtain raw scene
// data off the interactive thread. The real USD importer implementing this
// interface is out of scope; FixtureLoader below stands in for it in tests
// and examples.
type SceneLoader interface {
	Load(ctx context.Context) (*RawScene, error)
}

// RawMaterial mirrors the material fields a scene loader can supply.
type RawMaterial struct {
	Name      string
	BaseColor [3]float32
	Metallic  float32
	Roughness float32
}

// RawPrototype is pre-triangulated or raw face/vertex geometry as handed
// off by the scene loader, before winding/normal resolution.
type RawPrototype struct {
	Name string

	// Material names the RawMaterial (by RawMaterial.Name) this prototype
	// is bound to. Empty or unresolved falls back to the default material.
	Material string

	// Positions is a flat x,y,z list, one entry per vertex.
	Positions []float32

	// Normals is a flat x,y,z list matching Positions 1:1, or empty if
	// the loader has none and per-vertex normals must be generated.
	Normals []float32

	// UVs is a flat u,v list matching Positions 1:1, or empty.
	UVs []float32

	// FaceVertexCounts gives the vertex count of each face in order; a
	// mix of triangles, quads, and n-gons is expected from a USD source.
	// If nil, Indices is assumed already triangulated (a multiple of 3).
	FaceVertexCounts []int32

	// Indices indexes into Positions/Normals/UVs. Interpreted per-face
	// using FaceVertexCounts, or directly as a triangle list if
	// FaceVertexCounts is nil.
	Indices []int32

	// Orientation is "rightHanded" (the default winding, no flip needed)
	// or "leftHanded" (faces must be wound the other way).
	Orientation string
}

// RawInstance places a named prototype at a row-major 4x4 transform. An
// instance carries no material of its own: it renders with whatever
// material its prototype is bound to.
type RawInstance struct {
	Name      string
	Prototype string
	Transform [16]float64 // row-major: Xx,Xy,Xz,Xw, Yx,Yy,Yz,Yw, Zx,Zy,Zz,Zw, Wx,Wy,Wz,Ww.
}

// RawScene is the scene loader's output contract: everything Build needs
// to construct a *Scene, with no dependency on how it was produced.
type RawScene struct {
	Prototypes []RawPrototype
	Materials  []RawMaterial
	Instances  []RawInstance
}

// Build turns a RawScene into a *Scene: triangulating n-gon faces with a
// fan, flipping winding for "leftHanded" prototypes, and generating
// per-vertex normals by face-normal accumulation where the loader supplied
// none. log receives a debug line per prototype processed.
func Build(raw *RawScene, log *slog.Logger) (*Scene, error) {
	if log == nil {
		log = slog.Default()
	}
	s := NewScene()
	materials := make(map[string]*Material, len(raw.Materials))
	for _, rm := range raw.Materials {
		m := NewMaterial(rm.Name)
		if bc := (rgb{rm.BaseColor[0], rm.BaseColor[1], rm.BaseColor[2]}); !bc.isUnset() {
			m.BaseColor = bc // otherwise keep NewMaterial's white default.
		}
		m.Metallic = rm.Metallic
		m.Roughness = rm.Roughness
		materials[rm.Name] = m
	}
	for _, rp := range raw.Prototypes {
		proto, err := buildPrototype(&rp)
		if err != nil {
			return nil, fmt.Errorf("bif: build prototype %s: %w", rp.Name, err)
		}
		proto.Material = materials[rp.Material] // nil falls back to the default in AddPrototype.
		if err := s.AddPrototype(proto); err != nil {
			return nil, err
		}
		log.Debug("prototype built", "name", rp.Name, "triangles", proto.Triangles())
	}
	for _, ri := range raw.Instances {
		xf := rowMajorM4(ri.Transform)
		if _, err := s.AddInstance(ri.Name, ri.Prototype, xf); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// buildPrototype triangulates raw geometry (fan triangulation for faces
// with more than 3 vertices), flips winding for left-handed orientation,
// and generates vertex normals by accumulating face normals when the
// source supplied none.
func buildPrototype(rp *RawPrototype) (*Prototype, error) {
	if len(rp.Positions)%3 != 0 {
		return nil, ErrInvalidGeometry
	}
	vcount := len(rp.Positions) / 3
	hasNormals := len(rp.Normals) == 3*vcount
	hasUVs := len(rp.UVs) == 2*vcount

	verts := make([]Vertex, vcount)
	for i := 0; i < vcount; i++ {
		v := Vertex{Pos: lin.V3{X: float64(rp.Positions[3*i]), Y: float64(rp.Positions[3*i+1]), Z: float64(rp.Positions[3*i+2])}}
		if hasNormals {
			v.Norm = lin.V3{X: float64(rp.Normals[3*i]), Y: float64(rp.Normals[3*i+1]), Z: float64(rp.Normals[3*i+2])}
		}
		if hasUVs {
			v.U, v.V = rp.UVs[2*i], rp.UVs[2*i+1]
		}
		verts[i] = v
	}

	indices, err := triangulate(rp.Indices, rp.FaceVertexCounts)
	if err != nil {
		return nil, err
	}
	if rp.Orientation == "leftHanded" {
		flipWinding(indices)
	}
	if !hasNormals {
		generateNormals(verts, indices)
	}

	u32 := make([]uint32, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= int32(vcount) {
			return nil, ErrInvalidGeometry
		}
		u32[i] = uint32(idx)
	}
	return &Prototype{Name: rp.Name, Vertices: verts, Indices: u32}, nil
}

// triangulate expands polygon faces into a flat triangle-index list using
// fan triangulation from each face's first vertex. If counts is nil,
// idx is assumed to already be a triangle list.
func triangulate(idx []int32, counts []int32) ([]int32, error) {
	if counts == nil {
		if len(idx)%3 != 0 {
			return nil, ErrInvalidGeometry
		}
		return idx, nil
	}
	out := make([]int32, 0, len(idx))
	cursor := 0
	for _, n := range counts {
		if n < 3 {
			return nil, ErrInvalidGeometry
		}
		if cursor+int(n) > len(idx) {
			return nil, ErrInvalidGeometry
		}
		face := idx[cursor : cursor+int(n)]
		for i := 1; i < int(n)-1; i++ {
			out = append(out, face[0], face[i], face[i+1])
		}
		cursor += int(n)
	}
	return out, nil
}

// flipWinding reverses the last two indices of every triangle in place,
// turning a left-handed face list into the right-handed convention the
// rest of this module assumes.
func flipWinding(idx []int32) {
	for i := 0; i+2 < len(idx); i += 3 {
		idx[i+1], idx[i+2] = idx[i+2], idx[i+1]
	}
}

// generateNormals accumulates each triangle's face normal into its three
// vertices and renormalizes, the standard smooth-shading approximation
// used when a loader supplies no authored normals.
func generateNormals(verts []Vertex, idx []int32) {
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		e1 := &lin.V3{}
		e1.Sub(&verts[b].Pos, &verts[a].Pos)
		e2 := &lin.V3{}
		e2.Sub(&verts[c].Pos, &verts[a].Pos)
		n := &lin.V3{}
		n.Cross(e1, e2)
		verts[a].Norm.Add(&verts[a].Norm, n)
		verts[b].Norm.Add(&verts[b].Norm, n)
		verts[c].Norm.Add(&verts[c].Norm, n)
	}
	for i := range verts {
		if verts[i].Norm.LenSqr() > lin.Epsilon {
			verts[i].Norm.Unit()
		}
	}
}

// rowMajorM4 expands a flat row-major 16-element transform into an *M4.
func rowMajorM4(m [16]float64) *lin.M4 {
	return &lin.M4{
		Xx: m[0], Xy: m[1], Xz: m[2], Xw: m[3],
		Yx: m[4], Yy: m[5], Yz: m[6], Yw: m[7],
		Zx: m[8], Zy: m[9], Zz: m[10], Zw: m[11],
		Wx: m[12], Wy: m[13], Wz: m[14], Ww: m[15],
	}
}

// FixtureLoader is an in-memory SceneLoader for tests and examples: a
// single cube prototype repeated in an N x N grid of instances.
type FixtureLoader struct {
	GridSize int     // instances per side; total instances is GridSize^2.
	Spacing  float64 // distance between adjacent instance centers.
}

// Load synthesizes a RawScene fixture. Its only failure is cancellation:
// if ctx is done while the instance grid is being generated, it returns
// ctx.Err().
func (f *FixtureLoader) Load(ctx context.Context) (*RawScene, error) {
	n := f.GridSize
	if n <= 0 {
		n = 4
	}
	spacing := f.Spacing
	if spacing <= 0 {
		spacing = 2
	}

	cube := fixtureCube()
	cube.Material = "default"
	raw := &RawScene{
		Prototypes: []RawPrototype{cube},
		Materials: []RawMaterial{
			{Name: "default", BaseColor: [3]float32{0.8, 0.8, 0.8}, Roughness: 0.5},
		},
	}
	half := float64(n-1) * spacing * 0.5
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			tx := float64(x)*spacing - half
			tz := float64(z)*spacing - half
			raw.Instances = append(raw.Instances, RawInstance{
				Name:      fmt.Sprintf("cube-%d-%d", x, z),
				Prototype: "cube",
				Transform: [16]float64{
					1, 0, 0, 0,
					0, 1, 0, 0,
					0, 0, 1, 0,
					tx, 0, tz, 1,
				},
			})
		}
	}
	return raw, nil
}

// fixtureCube returns a unit cube as raw face/vertex data using
// FaceVertexCounts, exercising the n-gon-to-triangle path (each face is
// a quad) rather than a pre-triangulated index list.
func fixtureCube() RawPrototype {
	positions := []float32{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1, // back
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1, // front
	}
	indices := []int32{
		0, 1, 2, 3, // back
		4, 5, 6, 7, // front
		0, 4, 7, 3, // left
		1, 5, 6, 2, // right
		3, 2, 6, 7, // top
		0, 1, 5, 4, // bottom
	}
	counts := []int32{4, 4, 4, 4, 4, 4}
	return RawPrototype{
		Name:             "cube",
		Positions:        positions,
		FaceVertexCounts: counts,
		Indices:          indices,
		Orientation:      "rightHanded",
	}
}
