package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PopulationBoom(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndFrame: uint64(i * 100), Cells: 10})
	}
	bms := bd.Check(WindowStats{WindowEndFrame: 300, Cells: 25})
	if !hasBookmark(bms, BookmarkPopulationBoom) {
		t.Errorf("expected population_boom, got %v", bms)
	}
	// The minimum resets, so the same population does not trigger again.
	if bms := bd.Check(WindowStats{WindowEndFrame: 400, Cells: 26}); hasBookmark(bms, BookmarkPopulationBoom) {
		t.Error("boom triggered twice")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndFrame: uint64(i * 100), Cells: 100})
	}
	bms := bd.Check(WindowStats{WindowEndFrame: 500, Cells: 50})
	if !hasBookmark(bms, BookmarkPopulationCrash) {
		t.Errorf("expected population_crash, got %v", bms)
	}
}

func TestBookmarkDetector_MassBreakage(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndFrame: uint64(i * 100), Cells: 50, LinksBroken: 2})
	}
	bms := bd.Check(WindowStats{WindowEndFrame: 500, Cells: 50, LinksBroken: 30})
	if !hasBookmark(bms, BookmarkMassBreakage) {
		t.Errorf("expected mass_breakage, got %v", bms)
	}
}

func TestBookmarkDetector_SteadyStateOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	count := 0
	for i := 0; i < 20; i++ {
		bms := bd.Check(WindowStats{WindowEndFrame: uint64(i * 100), Cells: 40})
		if hasBookmark(bms, BookmarkSteadyState) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("steady_state triggered %d times, want 1", count)
	}
}

func TestBookmarkDetector_NoFalsePositives(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 3; i++ {
		bms := bd.Check(WindowStats{WindowEndFrame: uint64(i * 100), Cells: 30 + i, Spawned: 1})
		if len(bms) != 0 {
			t.Errorf("window %d: unexpected bookmarks %v", i, bms)
		}
	}
}
