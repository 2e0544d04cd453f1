package mesh

import "github.com/pthm-cable/morphogen/vecmath"

// Plane returns a horizontal square of half-width half at height y, made of
// two triangles facing +Y.
func Plane(name string, y, half float64) *Model {
	return &Model{
		Name: name,
		Vertices: []vecmath.Vec{
			vecmath.V(-half, y, -half),
			vecmath.V(-half, y, half),
			vecmath.V(half, y, half),
			vecmath.V(half, y, -half),
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
		dirty: true,
	}
}

// Box returns the closed axis-aligned box spanned by lo and hi, twelve
// triangles with outward normals.
func Box(name string, lo, hi vecmath.Vec) *Model {
	v := []vecmath.Vec{
		vecmath.V(lo.X, lo.Y, lo.Z), // 0
		vecmath.V(hi.X, lo.Y, lo.Z), // 1
		vecmath.V(hi.X, hi.Y, lo.Z), // 2
		vecmath.V(lo.X, hi.Y, lo.Z), // 3
		vecmath.V(lo.X, lo.Y, hi.Z), // 4
		vecmath.V(hi.X, lo.Y, hi.Z), // 5
		vecmath.V(hi.X, hi.Y, hi.Z), // 6
		vecmath.V(lo.X, hi.Y, hi.Z), // 7
	}
	f := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // -Z
		{4, 5, 6}, {4, 6, 7}, // +Z
		{0, 1, 5}, {0, 5, 4}, // -Y
		{3, 7, 6}, {3, 6, 2}, // +Y
		{0, 4, 7}, {0, 7, 3}, // -X
		{1, 2, 6}, {1, 6, 5}, // +X
	}
	return &Model{Name: name, Vertices: v, Faces: f, dirty: true}
}
