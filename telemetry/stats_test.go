package telemetry

import (
	"math"
	"slices"
	"testing"
)

func TestSummarize(t *testing.T) {
	values := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}
	orig := slices.Clone(values)
	d := Summarize(values)

	if math.Abs(d.Mean-5.5) > 1e-12 {
		t.Errorf("mean = %v, want 5.5", d.Mean)
	}
	// Sample standard deviation of 1..10.
	if math.Abs(d.Std-math.Sqrt(82.5/9)) > 1e-9 {
		t.Errorf("std = %v", d.Std)
	}
	if math.Abs(d.P50-5) > 1e-9 {
		t.Errorf("p50 = %v, want 5", d.P50)
	}
	if !(d.P10 <= d.P50 && d.P50 <= d.P90) || d.P10 < 1 || d.P90 > 10 {
		t.Errorf("deciles not ordered: %+v", d)
	}
	if !slices.Equal(values, orig) {
		t.Error("Summarize modified its input")
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{3}, Distribution{Mean: 3, Std: 0, P10: 3, P50: 3, P90: 3}},
		{"constant", []float64{2, 2, 2, 2}, Distribution{Mean: 2, Std: 0, P10: 2, P50: 2, P90: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			pairs := [][2]float64{
				{got.Mean, tt.want.Mean},
				{got.Std, tt.want.Std},
				{got.P10, tt.want.P10},
				{got.P50, tt.want.P50},
				{got.P90, tt.want.P90},
			}
			for _, p := range pairs {
				if math.Abs(p[0]-p[1]) > 1e-9 {
					t.Errorf("Summarize(%v) = %+v, want %+v", tt.values, got, tt.want)
					break
				}
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.01)
	if c.WindowFrames() != 100 {
		t.Fatalf("WindowFrames = %d, want 100", c.WindowFrames())
	}
	c.Record(FrameCounts{Spawned: 2, LinksCreated: 3})
	c.Record(FrameCounts{Reaped: 1, LinksBroken: 1})

	if c.ShouldFlush(99) {
		t.Error("flush before the window ends")
	}
	if !c.ShouldFlush(100) {
		t.Error("no flush at the window end")
	}

	s := c.Flush(100, Sample{Cells: 4, CellLinks: 2, Speeds: []float64{1, 1, 1, 1}})
	if s.Spawned != 2 || s.Reaped != 1 || s.LinksCreated != 3 || s.LinksBroken != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.MeanDegree != 1 || s.SpeedMean != 1 {
		t.Errorf("MeanDegree = %v, SpeedMean = %v", s.MeanDegree, s.SpeedMean)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-12 {
		t.Errorf("SimTimeSec = %v", s.SimTimeSec)
	}

	next := c.Flush(200, Sample{})
	if next.Spawned != 0 || next.WindowStartFrame != 100 {
		t.Errorf("counters not reset: %+v", next)
	}
}
