// Package mesh holds the static triangle meshes cells can attach to.
package mesh

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/morphogen/vecmath"
)

var (
	// ErrEmptyMesh is returned for a model without vertices or faces.
	ErrEmptyMesh = errors.New("mesh: empty mesh")
	// ErrInvalidFace is returned when a face references a missing vertex.
	ErrInvalidFace = errors.New("mesh: face references missing vertex")
)

// Model is a triangle mesh. Geometry edits go through the methods so the
// dirty flag stays accurate; the world rebuilds its model grid only when a
// model reports a change.
type Model struct {
	Name     string
	Vertices []vecmath.Vec
	Faces    [][3]int

	dirty bool
}

// New builds a validated model. A new model starts dirty so its first
// registration populates the grid.
func New(name string, vertices []vecmath.Vec, faces [][3]int) (*Model, error) {
	m := &Model{Name: name, Vertices: vertices, Faces: faces, dirty: true}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the mesh is non-empty and every face index is in range.
func (m *Model) Validate() error {
	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return fmt.Errorf("model %q: %w", m.Name, ErrEmptyMesh)
	}
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("model %q face %d: vertex %d: %w", m.Name, i, v, ErrInvalidFace)
			}
		}
	}
	return nil
}

// Triangle returns the corners of face i.
func (m *Model) Triangle(i int) (a, b, c vecmath.Vec) {
	f := m.Faces[i]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// Normal returns the unit normal of face i, or false for a degenerate face.
func (m *Model) Normal(i int) (vecmath.Vec, bool) {
	return vecmath.TriangleNormal(m.Triangle(i))
}

// Translate moves every vertex by d.
func (m *Model) Translate(d vecmath.Vec) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(d)
	}
	m.dirty = true
}

// Scale multiplies every vertex by f about the origin.
func (m *Model) Scale(f float64) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Scale(f)
	}
	m.dirty = true
}

// SetVertex moves a single vertex.
func (m *Model) SetVertex(i int, p vecmath.Vec) {
	m.Vertices[i] = p
	m.dirty = true
}

// MarkDirty flags the geometry as changed after a direct edit of Vertices.
func (m *Model) MarkDirty() {
	m.dirty = true
}

// ChangedSinceLastCheck reports whether the geometry changed since the
// previous call, and resets the flag.
func (m *Model) ChangedSinceLastCheck() bool {
	d := m.dirty
	m.dirty = false
	return d
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Model) Bounds() (lo, hi vecmath.Vec) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = vecmath.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = vecmath.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}

// FaceRef names one face of a registered model.
type FaceRef struct {
	Model string
	Face  int
}
