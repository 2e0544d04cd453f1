// Package spatial provides the uniform hash grid used for broad-phase
// proximity queries.
package spatial

import (
	"iter"
	"math"
	"slices"

	"github.com/pthm-cable/morphogen/vecmath"
)

// Grid buckets keys by the cell of a uniform 3D lattice they overlap. It is
// unbounded: cells are addressed through vecmath.Hash3 so only occupied
// cells cost memory.
//
// Queries return a short list of candidates, not an exact answer; distance
// filtering is the caller's job.
type Grid[K comparable] struct {
	cellSize float64
	cells    map[int64][]K
	entries  int
}

// NewGrid creates an empty grid with the given cell size.
func NewGrid[K comparable](cellSize float64) *Grid[K] {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		panic("spatial: cell size must be positive")
	}
	return &Grid[K]{
		cellSize: cellSize,
		cells:    make(map[int64][]K, 64),
	}
}

// CellSize returns the edge length of a grid cell.
func (g *Grid[K]) CellSize() float64 {
	return g.cellSize
}

// Clear removes every key. Buckets used since the previous Clear keep their
// storage for reuse, so a grid rebuilt each frame stops allocating once it
// reaches steady state. Buckets that stayed empty since then are dropped,
// so the grid follows a drifting population without growing.
func (g *Grid[K]) Clear() {
	for h, b := range g.cells {
		if len(b) == 0 {
			delete(g.cells, h)
			continue
		}
		g.cells[h] = b[:0]
	}
	g.entries = 0
}

// Insert adds a point-like key at position p.
func (g *Grid[K]) Insert(key K, p vecmath.Vec) {
	g.insertAt(vecmath.CellHash(p, g.cellSize), key)
}

// InsertTriangle adds key to every cell overlapped by the bounding box of
// triangle abc. A key usually lands in several cells.
func (g *Grid[K]) InsertTriangle(key K, a, b, c vecmath.Vec) {
	lo := vecmath.Vec{
		X: min(a.X, b.X, c.X),
		Y: min(a.Y, b.Y, c.Y),
		Z: min(a.Z, b.Z, c.Z),
	}
	hi := vecmath.Vec{
		X: max(a.X, b.X, c.X),
		Y: max(a.Y, b.Y, c.Y),
		Z: max(a.Z, b.Z, c.Z),
	}
	vecmath.IterateTo(lo.Div(g.cellSize), hi.Div(g.cellSize), func(x, y, z int64) {
		g.insertAt(vecmath.Hash3(x, y, z), key)
	})
}

func (g *Grid[K]) insertAt(h int64, key K) {
	g.cells[h] = append(g.cells[h], key)
	g.entries++
}

// QueryInto appends to dst every key stored in the cells overlapped by the
// cube of half-width radius around p, and returns the extended slice. Reuse
// dst across calls to avoid allocations.
//
// Cells are visited x-major then y then z, and keys within a cell in
// insertion order, so results are deterministic. A key stored in several
// visited cells is returned once per cell.
func (g *Grid[K]) QueryInto(dst []K, p vecmath.Vec, radius float64) []K {
	r := vecmath.Vec{X: radius, Y: radius, Z: radius}
	lo := p.Sub(r).Div(g.cellSize)
	hi := p.Add(r).Div(g.cellSize)
	vecmath.IterateTo(lo, hi, func(x, y, z int64) {
		dst = append(dst, g.cells[vecmath.Hash3(x, y, z)]...)
	})
	return dst
}

// Query is QueryInto with a fresh slice.
func (g *Grid[K]) Query(p vecmath.Vec, radius float64) []K {
	return g.QueryInto(nil, p, radius)
}

// Len returns the number of stored entries, counting a key once per cell.
func (g *Grid[K]) Len() int {
	return g.entries
}

// Buckets returns the number of non-empty cells.
func (g *Grid[K]) Buckets() int {
	n := 0
	for _, b := range g.cells {
		if len(b) > 0 {
			n++
		}
	}
	return n
}

// Count returns the number of entries satisfying pred.
func (g *Grid[K]) Count(pred func(K) bool) int {
	n := 0
	for _, b := range g.cells {
		for _, k := range b {
			if pred(k) {
				n++
			}
		}
	}
	return n
}

// All iterates over the non-empty cells in ascending hash order. The yielded
// slices belong to the grid and must not be modified.
func (g *Grid[K]) All() iter.Seq2[int64, []K] {
	return func(yield func(int64, []K) bool) {
		hashes := make([]int64, 0, len(g.cells))
		for h, b := range g.cells {
			if len(b) > 0 {
				hashes = append(hashes, h)
			}
		}
		slices.Sort(hashes)
		for _, h := range hashes {
			if !yield(h, g.cells[h]) {
				return
			}
		}
	}
}
