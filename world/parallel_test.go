package world

import (
	"fmt"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/vecmath"
)

func TestPoolRunCoversRange(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		threshold int
		n         int
	}{
		{"serial", 1, parallelThreshold, 100},
		{"below threshold", 4, parallelThreshold, 10},
		{"fan out", 4, 1, 103},
		{"more workers than items", 8, 1, 3},
		{"empty", 4, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPool(tt.workers)
			p.threshold = tt.threshold
			defer p.stop()

			hits := make([]int32, tt.n)
			var calls atomic.Int32
			p.run(tt.n, func(lo, hi int) {
				calls.Add(1)
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("item %d visited %d times", i, h)
				}
			}
			if tt.n == 0 && calls.Load() != 0 {
				t.Error("fn called for an empty range")
			}
		})
	}
}

// simulate runs a small colony on a floor and returns the final positions
// and links.
func simulate(workers int) ([]vecmath.Vec, []string) {
	p := DefaultParams()
	p.Gravity = vecmath.V(0, -20, 0)
	w := New[*body.Body](Options{Params: p, Logger: quiet, Workers: workers})
	defer w.Close()
	w.pool.threshold = 1

	if err := w.AddMesh("floor", mesh.Plane("floor", 0, 400)); err != nil {
		panic(err)
	}
	for i := range 10 {
		for j := range 10 {
			b := ball(vecmath.V(float64(i)*38-150, 10+float64((i*7+j*3)%5), float64(j)*38-150), 20)
			b.SetVelocity(vecmath.V(float64(j-5), 0, float64(i-5)))
			w.AddAgent(b)
		}
	}
	for range 30 {
		w.Step()
	}

	var pos []vecmath.Vec
	for _, a := range w.Agents() {
		pos = append(pos, a.Position())
	}
	var links []string
	for _, pr := range w.ConnectedPairs() {
		links = append(links, fmt.Sprintf("%d-%d", pr.First, pr.Second))
	}
	for l := range w.ModelLinks().All() {
		links = append(links, fmt.Sprintf("%s/%d/%d", l.Model, l.Agent, l.Face))
	}
	return pos, links
}

func TestStepDeterministicAcrossWorkers(t *testing.T) {
	wantPos, wantLinks := simulate(1)
	if len(wantLinks) == 0 {
		t.Fatal("scenario formed no links")
	}
	for _, workers := range []int{2, 4, 7} {
		pos, links := simulate(workers)
		if !slices.Equal(pos, wantPos) {
			t.Errorf("workers=%d: positions differ from the serial run", workers)
		}
		if !slices.Equal(links, wantLinks) {
			t.Errorf("workers=%d: links differ from the serial run", workers)
		}
	}
}
