package spatial

import (
	"slices"
	"testing"

	"github.com/pthm-cable/morphogen/vecmath"
)

func TestGridInsertQuery(t *testing.T) {
	g := NewGrid[int](10)
	g.Insert(1, vecmath.V(1, 1, 1))
	g.Insert(2, vecmath.V(12, 1, 1))   // neighbouring cell
	g.Insert(3, vecmath.V(55, 55, 55)) // far away
	g.Insert(4, vecmath.V(-3, 2, 2))   // negative side

	got := g.Query(vecmath.V(5, 5, 5), 6)
	slices.Sort(got)
	if want := []int{1, 2, 4}; !slices.Equal(got, want) {
		t.Errorf("Query = %v, want %v", got, want)
	}
	if g.Len() != 4 {
		t.Errorf("Len = %d, want 4", g.Len())
	}
}

func TestGridQueryIntoReusesBuffer(t *testing.T) {
	g := NewGrid[int](1)
	for i := 0; i < 5; i++ {
		g.Insert(i, vecmath.V(0.5, 0.5, 0.5))
	}
	buf := make([]int, 0, 16)
	buf = g.QueryInto(buf[:0], vecmath.V(0.5, 0.5, 0.5), 0.1)
	if !slices.Equal(buf, []int{0, 1, 2, 3, 4}) {
		t.Errorf("QueryInto = %v, want insertion order", buf)
	}
	if cap(buf) != 16 {
		t.Errorf("buffer was reallocated")
	}
}

func TestGridInsertTriangleCoversBoundingBox(t *testing.T) {
	g := NewGrid[string](1)
	g.InsertTriangle("tri", vecmath.V(0.5, 0.5, 0.5), vecmath.V(2.5, 0.5, 0.5), vecmath.V(0.5, 1.5, 0.5))
	// x cells 0..2, y cells 0..1, z cell 0
	if g.Len() != 6 {
		t.Errorf("Len = %d, want 6", g.Len())
	}
	// Any point near the triangle must find it.
	for _, p := range []vecmath.Vec{
		vecmath.V(2.4, 0.6, 0.5),
		vecmath.V(0.6, 1.4, 0.5),
		vecmath.V(1.5, 0.5, 0.5),
	} {
		if got := g.Query(p, 0.1); !slices.Contains(got, "tri") {
			t.Errorf("query at %v missed the triangle: %v", p, got)
		}
	}
}

func TestGridClear(t *testing.T) {
	g := NewGrid[int](2)
	g.Insert(1, vecmath.V(0, 0, 0))
	g.Insert(2, vecmath.V(9, 9, 9))
	g.Clear()
	if g.Len() != 0 || g.Buckets() != 0 {
		t.Errorf("after Clear: Len=%d Buckets=%d", g.Len(), g.Buckets())
	}
	if got := g.Query(vecmath.V(0, 0, 0), 1); len(got) != 0 {
		t.Errorf("Query after Clear = %v", got)
	}
	g.Insert(3, vecmath.V(0, 0, 0))
	if got := g.Query(vecmath.V(0, 0, 0), 0.5); !slices.Equal(got, []int{3}) {
		t.Errorf("Query after reinsertion = %v", got)
	}
}

func TestGridClearDropsStaleBuckets(t *testing.T) {
	g := NewGrid[int](1)
	// One key drifting one cell per rebuild visits 100 distinct cells.
	for i := range 100 {
		g.Clear()
		g.Insert(7, vecmath.V(float64(i)+0.5, 0.5, 0.5))
	}
	// The current cell and the one used by the previous rebuild.
	if n := len(g.cells); n > 2 {
		t.Errorf("grid holds %d buckets, want at most 2", n)
	}
	if g.Buckets() != 1 || g.Len() != 1 {
		t.Errorf("Buckets=%d Len=%d, want 1 and 1", g.Buckets(), g.Len())
	}
	if got := g.Query(vecmath.V(99.5, 0.5, 0.5), 0.1); !slices.Equal(got, []int{7}) {
		t.Errorf("Query = %v", got)
	}
}

func TestGridAllAndCount(t *testing.T) {
	g := NewGrid[int](1)
	g.Insert(1, vecmath.V(0, 0, 0))
	g.Insert(2, vecmath.V(0, 0, 0))
	g.Insert(3, vecmath.V(5, 0, 0))

	cells := 0
	total := 0
	var prev int64
	for h, keys := range g.All() {
		if cells > 0 && h <= prev {
			t.Errorf("All not in ascending hash order")
		}
		prev = h
		cells++
		total += len(keys)
	}
	if cells != 2 || total != 3 {
		t.Errorf("All visited %d cells / %d keys, want 2 / 3", cells, total)
	}
	if n := g.Count(func(k int) bool { return k > 1 }); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestNewGridRejectsBadCellSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero cell size")
		}
	}()
	NewGrid[int](0)
}
