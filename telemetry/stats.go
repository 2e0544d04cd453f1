package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// State at window end
	Cells      int `csv:"cells"`
	CellLinks  int `csv:"cell_links"`
	ModelLinks int `csv:"model_links"`

	// Events during window
	Spawned           int `csv:"spawned"`
	Reaped            int `csv:"reaped"`
	LinksCreated      int `csv:"links_created"`
	ModelLinksCreated int `csv:"model_links_created"`
	LinksBroken       int `csv:"links_broken"`
	LinksDangling     int `csv:"links_dangling"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	KineticEnergy float64 `csv:"kinetic_energy"`
	MeanDegree    float64 `csv:"mean_degree"` // cell links per cell
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes the mean, standard deviation and deciles of values.
// values is not modified. An empty sample yields zeros.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:  stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}
}

// LogValue implements slog.LogValuer.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("cells", s.Cells),
		slog.Int("cell_links", s.CellLinks),
		slog.Int("model_links", s.ModelLinks),
		slog.Int("spawned", s.Spawned),
		slog.Int("reaped", s.Reaped),
		slog.Int("links_created", s.LinksCreated),
		slog.Int("model_links_created", s.ModelLinksCreated),
		slog.Int("links_broken", s.LinksBroken),
		slog.Int("links_dangling", s.LinksDangling),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("mean_degree", s.MeanDegree),
	)
}

// LogStats logs the window at Info level.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"cells", s.Cells,
		"cell_links", s.CellLinks,
		"model_links", s.ModelLinks,
		"spawned", s.Spawned,
		"reaped", s.Reaped,
		"links_created", s.LinksCreated,
		"links_broken", s.LinksBroken,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"kinetic_energy", s.KineticEnergy,
	)
}
