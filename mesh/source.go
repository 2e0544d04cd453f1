package mesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/morphogen/vecmath"
)

// Source produces a model for registration.
type Source interface {
	Load() (*Model, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (*Model, error)

// Load calls f.
func (f SourceFunc) Load() (*Model, error) { return f() }

// Static returns a Source that always yields m.
func Static(m *Model) Source {
	return SourceFunc(func() (*Model, error) {
		if m == nil {
			return nil, ErrEmptyMesh
		}
		return m, m.Validate()
	})
}

// fileMesh is the on-disk YAML layout.
type fileMesh struct {
	Name      string       `yaml:"name"`
	Vertices  [][3]float64 `yaml:"vertices"`
	Faces     [][3]int     `yaml:"faces"`
	Translate *[3]float64  `yaml:"translate"`
	Scale     float64      `yaml:"scale"`
}

// File returns a Source reading a YAML mesh description:
//
//	name: floor
//	vertices: [[0, 0, 0], [1, 0, 0], [0, 0, 1]]
//	faces: [[0, 2, 1]]
//	scale: 100          # optional
//	translate: [0, -5, 0] # optional, applied after scale
func File(path string) Source {
	return SourceFunc(func() (*Model, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading mesh file: %w", err)
		}
		return Parse(data)
	})
}

// Parse decodes a YAML mesh description.
func Parse(data []byte) (*Model, error) {
	var fm fileMesh
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("parsing mesh: %w", err)
	}
	verts := make([]vecmath.Vec, len(fm.Vertices))
	for i, v := range fm.Vertices {
		verts[i] = vecmath.V(v[0], v[1], v[2])
	}
	m, err := New(fm.Name, verts, fm.Faces)
	if err != nil {
		return nil, err
	}
	if fm.Scale != 0 && fm.Scale != 1 {
		m.Scale(fm.Scale)
	}
	if fm.Translate != nil {
		t := fm.Translate
		m.Translate(vecmath.V(t[0], t[1], t[2]))
	}
	return m, nil
}
