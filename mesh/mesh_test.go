package mesh

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/morphogen/vecmath"
)

func TestNewValidates(t *testing.T) {
	tri := []vecmath.Vec{vecmath.V(0, 0, 0), vecmath.V(1, 0, 0), vecmath.V(0, 1, 0)}
	tests := []struct {
		name  string
		verts []vecmath.Vec
		faces [][3]int
		want  error
	}{
		{"ok", tri, [][3]int{{0, 1, 2}}, nil},
		{"no faces", tri, nil, ErrEmptyMesh},
		{"no vertices", nil, [][3]int{{0, 1, 2}}, ErrEmptyMesh},
		{"index out of range", tri, [][3]int{{0, 1, 3}}, ErrInvalidFace},
		{"negative index", tri, [][3]int{{-1, 1, 2}}, ErrInvalidFace},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("m", tc.verts, tc.faces)
			if !errors.Is(err, tc.want) {
				t.Errorf("New() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDirtyTracking(t *testing.T) {
	m := Plane("floor", 0, 10)
	if !m.ChangedSinceLastCheck() {
		t.Error("new model should report a change")
	}
	if m.ChangedSinceLastCheck() {
		t.Error("second check without edits should be clean")
	}
	m.Translate(vecmath.V(0, 1, 0))
	if !m.ChangedSinceLastCheck() {
		t.Error("Translate should mark the model dirty")
	}
	m.SetVertex(0, vecmath.V(0, 0, 0))
	if !m.ChangedSinceLastCheck() {
		t.Error("SetVertex should mark the model dirty")
	}
}

func TestPrimitiveNormals(t *testing.T) {
	p := Plane("floor", 3, 5)
	for i := range p.Faces {
		n, ok := p.Normal(i)
		if !ok || n != vecmath.UnitY {
			t.Errorf("plane face %d normal = %v", i, n)
		}
	}

	b := Box("box", vecmath.V(-1, -1, -1), vecmath.V(1, 1, 1))
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
	for i := range b.Faces {
		n, ok := b.Normal(i)
		if !ok {
			t.Fatalf("box face %d degenerate", i)
		}
		a, _, _ := b.Triangle(i)
		// Outward: the normal points away from the box centre.
		if n.Dot(a) <= 0 {
			t.Errorf("box face %d normal %v points inward", i, n)
		}
	}
}

func TestParse(t *testing.T) {
	src := []byte(`
name: ramp
vertices: [[0, 0, 0], [1, 0, 0], [0, 0, 1]]
faces: [[0, 2, 1]]
scale: 10
translate: [0, -5, 0]
`)
	m, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "ramp" || len(m.Faces) != 1 {
		t.Fatalf("unexpected model %+v", m)
	}
	if got := m.Vertices[1]; got != vecmath.V(10, -5, 0) {
		t.Errorf("vertex 1 = %v, want scaled then translated", got)
	}
	if _, err := Parse([]byte("name: bad\nvertices: [[0,0,0]]\nfaces: [[0,0,4]]\n")); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("Parse bad face error = %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.yaml")
	data := "name: floor\nvertices: [[0,0,0],[1,0,0],[0,0,1]]\nfaces: [[0,2,1]]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := File(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, _ := m.Normal(0)
	if math.Abs(n.Y-1) > 1e-12 {
		t.Errorf("normal = %v, want +Y", n)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.yaml")).Load(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStaticSource(t *testing.T) {
	if _, err := Static(nil).Load(); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("Static(nil) error = %v", err)
	}
	p := Plane("p", 0, 1)
	m, err := Static(p).Load()
	if err != nil || m != p {
		t.Errorf("Static(p) = %v, %v", m, err)
	}
}

func TestBounds(t *testing.T) {
	b := Box("b", vecmath.V(-2, 0, 1), vecmath.V(3, 4, 5))
	lo, hi := b.Bounds()
	if lo != vecmath.V(-2, 0, 1) || hi != vecmath.V(3, 4, 5) {
		t.Errorf("Bounds = %v, %v", lo, hi)
	}
}
