package telemetry

// FrameCounts are the lifecycle events of one world step.
type FrameCounts struct {
	Spawned           int
	Reaped            int
	LinksCreated      int
	ModelLinksCreated int
	LinksBroken       int
	LinksDangling     int
}

// Add accumulates o into c.
func (c *FrameCounts) Add(o FrameCounts) {
	c.Spawned += o.Spawned
	c.Reaped += o.Reaped
	c.LinksCreated += o.LinksCreated
	c.ModelLinksCreated += o.ModelLinksCreated
	c.LinksBroken += o.LinksBroken
	c.LinksDangling += o.LinksDangling
}

// Sample is the population state the caller hands to Flush.
type Sample struct {
	Cells      int
	CellLinks  int
	ModelLinks int
	Speeds     []float64
	// KineticEnergy is the total translational kinetic energy.
	KineticEnergy float64
}

// Collector accumulates frame events within windows and produces WindowStats.
type Collector struct {
	windowFrames uint64
	dt           float64

	windowStart uint64
	counts      FrameCounts
}

// NewCollector creates a collector flushing every windowSec simulated
// seconds, given the step duration dt.
func NewCollector(windowSec, dt float64) *Collector {
	frames := uint64(windowSec / dt)
	if frames < 1 {
		frames = 1
	}
	return &Collector{windowFrames: frames, dt: dt}
}

// Record adds the events of one frame.
func (c *Collector) Record(f FrameCounts) {
	c.counts.Add(f)
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStart >= c.windowFrames
}

// WindowFrames returns the window length in frames.
func (c *Collector) WindowFrames() uint64 {
	return c.windowFrames
}

// Flush produces the stats of the window ending at frame and starts a new one.
func (c *Collector) Flush(frame uint64, s Sample) WindowStats {
	d := Summarize(s.Speeds)
	var degree float64
	if s.Cells > 0 {
		degree = 2 * float64(s.CellLinks) / float64(s.Cells)
	}
	stats := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   frame,
		SimTimeSec:       float64(frame) * c.dt,

		Cells:      s.Cells,
		CellLinks:  s.CellLinks,
		ModelLinks: s.ModelLinks,

		Spawned:           c.counts.Spawned,
		Reaped:            c.counts.Reaped,
		LinksCreated:      c.counts.LinksCreated,
		ModelLinksCreated: c.counts.ModelLinksCreated,
		LinksBroken:       c.counts.LinksBroken,
		LinksDangling:     c.counts.LinksDangling,

		SpeedMean: d.Mean,
		SpeedStd:  d.Std,
		SpeedP10:  d.P10,
		SpeedP50:  d.P50,
		SpeedP90:  d.P90,

		KineticEnergy: s.KineticEnergy,
		MeanDegree:    degree,
	}

	c.windowStart = frame
	c.counts = FrameCounts{}
	return stats
}
