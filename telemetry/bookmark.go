package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationBoom  BookmarkType = "population_boom"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkMassBreakage    BookmarkType = "mass_breakage"
	BookmarkSteadyState     BookmarkType = "steady_state"
)

// Bookmark marks an interesting window.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       uint64       `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark at Info level.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive windows for notable transitions.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentMin     int // smallest population since the last boom
	recentPeak    int // largest population since the last crash
	steadyWindows int
}

// NewBookmarkDetector creates a detector remembering historySize windows.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		recentMin:   -1,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkBoom,
			bd.checkCrash,
			bd.checkBreakage,
			bd.checkSteady,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	if bd.recentMin < 0 || stats.Cells < bd.recentMin {
		bd.recentMin = stats.Cells
	}
	if stats.Cells > bd.recentPeak {
		bd.recentPeak = stats.Cells
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	if bd.recentMin <= 0 {
		return nil
	}
	if stats.Cells >= 2*bd.recentMin && stats.Cells >= bd.recentMin+10 {
		old := bd.recentMin
		bd.recentMin = stats.Cells
		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Population grew from %d to %d", old, stats.Cells),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}
	drop := 1 - float64(stats.Cells)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Cells < bd.recentPeak-10 {
		old := bd.recentPeak
		bd.recentPeak = stats.Cells
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, old, stats.Cells),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkBreakage(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.LinksBroken
	}
	avg := float64(total) / float64(len(history))
	if stats.LinksBroken >= 10 && float64(stats.LinksBroken) > 2*avg {
		return &Bookmark{
			Type:        BookmarkMassBreakage,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%d links broke, %.1fx the average of %.1f", stats.LinksBroken, float64(stats.LinksBroken)/max(avg, 1), avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteady(stats WindowStats) *Bookmark {
	if stats.Cells == 0 {
		bd.steadyWindows = 0
		return nil
	}
	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Cells)
	}
	mean := sum / 4
	var variance float64
	for _, h := range recent {
		d := float64(h.Cells) - mean
		variance += d * d
	}
	variance /= 4

	// CV² < 0.0025 means CV < 5%.
	if mean > 0 && variance/(mean*mean) < 0.0025 && stats.Spawned == 0 {
		bd.steadyWindows++
	} else {
		bd.steadyWindows = 0
	}
	if bd.steadyWindows == 5 {
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Population steady at %d cells over 5+ windows", stats.Cells),
		}
	}
	return nil
}
