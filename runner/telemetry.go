package runner

import "github.com/pthm-cable/morphogen/telemetry"

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (r *Runner) flushTelemetry() {
	frame := r.world.Frame()
	if !r.collector.ShouldFlush(frame) {
		return
	}

	stats := r.collector.Flush(frame, r.world.Sample())
	perfStats := r.perf.Stats()

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	if r.logStats {
		stats.LogStats(r.logger)
		perfStats.LogStats(r.logger)
	}

	if err := r.output.WriteTelemetry(stats); err != nil {
		r.logger.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		r.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range r.bookmarks.Check(stats) {
		if r.logStats {
			bm.LogBookmark(r.logger)
		}
		if err := r.output.WriteBookmark(bm); err != nil {
			r.logger.Error("failed to write bookmark", "error", err)
		}
		r.saveSnapshot(&bm)
	}
}

// saveSnapshot writes the current state to the output directory, if any.
func (r *Runner) saveSnapshot(bm *telemetry.Bookmark) {
	snap := r.world.Snapshot()
	snap.Seed = r.seed
	snap.Bookmark = bm
	path, err := r.output.WriteSnapshot(snap)
	if err != nil {
		r.logger.Error("failed to save snapshot", "error", err)
		return
	}
	if path != "" {
		r.logger.Info("snapshot saved", "path", path, "frame", snap.Frame)
	}
}
