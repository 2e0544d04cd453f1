package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/morphogen/config"
	"github.com/pthm-cable/morphogen/telemetry"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	return cfg
}

func newRunner(t *testing.T, cfg *config.Config, opts Options) *Runner {
	t.Helper()
	opts.Logger = quiet
	r, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewSpawnsPopulation(t *testing.T) {
	cfg := defaults(t)
	cfg.Models = []config.ModelConfig{{Name: "floor", Kind: "plane", Y: -300, Half: 1000}}
	r := newRunner(t, cfg, Options{Seed: 7})

	if r.World().Len() != cfg.Population.Initial {
		t.Errorf("len = %d, want %d", r.World().Len(), cfg.Population.Initial)
	}
	if r.Seed() != 7 {
		t.Errorf("seed = %d", r.Seed())
	}
	for _, c := range r.World().Agents() {
		p := c.Position()
		for _, x := range []float64{p.X, p.Y, p.Z} {
			if x < -cfg.Population.Spread || x > cfg.Population.Spread {
				t.Errorf("cell outside the spawn cube: %v", p)
			}
		}
	}
	if _, ok := r.World().Model("floor"); !ok {
		t.Error("floor model not loaded")
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() *telemetry.Snapshot {
		r := newRunner(t, defaults(t), Options{Seed: 3})
		if err := r.Run(context.Background(), 60); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return r.World().Snapshot()
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same seed diverged")
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := defaults(t)
	cfg.Telemetry.StatsWindow = 0.1 // 10 frames
	cfg.Telemetry.SnapshotEvery = 5
	r := newRunner(t, cfg, Options{Seed: 11, OutputDir: dir, LogStats: true, Check: true})

	windows := 0
	r.OnStats(func(telemetry.WindowStats) { windows++ })
	for range 20 {
		if err := r.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if windows != 2 {
		t.Errorf("flushed %d windows, want 2", windows)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("telemetry.csv has %d lines, want a header and 2 rows", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml: %v", err)
	}

	snap, err := telemetry.LoadSnapshot(filepath.Join(dir, "snapshots", "snapshot_10.json"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Frame != 10 || snap.Seed != 11 || len(snap.Cells) == 0 {
		t.Errorf("snapshot frame %d seed %d cells %d", snap.Frame, snap.Seed, len(snap.Cells))
	}
}

func TestScriptOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "divide.lua")
	src := `
function decide(s)
  if s.radius >= 41 then return {divide = true} end
  return {grow = 100 * s.dt}
end
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := defaults(t)
	cfg.Population.Initial = 1
	r := newRunner(t, cfg, Options{Script: path})

	// 40 -> 41, then division.
	for range 2 {
		if err := r.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if r.World().Len() != 2 {
		t.Errorf("len = %d, want 2", r.World().Len())
	}
}

func TestRunStopsOnExtinction(t *testing.T) {
	cfg := defaults(t)
	cfg.Behavior.DeathRate = 1e9
	r := newRunner(t, cfg, Options{})
	if err := r.Run(context.Background(), 100); err != nil {
		t.Fatal(err)
	}
	if r.Frame() != 1 || r.World().Len() != 0 {
		t.Errorf("frame %d len %d", r.Frame(), r.World().Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := defaults(t)
	cfg.Telemetry.StatsWindow = 0.1 // 10 frames
	r := newRunner(t, cfg, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.OnStats(func(telemetry.WindowStats) { cancel() })

	if err := r.Run(ctx, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Frame() != 10 {
		t.Errorf("stopped at frame %d, want 10", r.Frame())
	}

	done, stop := context.WithCancel(context.Background())
	stop()
	if err := r.Run(done, 0); err != nil || r.Frame() != 10 {
		t.Errorf("cancelled Run stepped to frame %d, err %v", r.Frame(), err)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		opts   Options
	}{
		{"unknown integrator", func(c *config.Config) { c.World.Integrator = "rk4" }, Options{}},
		{"missing script", func(*config.Config) {}, Options{Script: "does-not-exist.lua"}},
		{"missing model file", func(c *config.Config) {
			c.Models = []config.ModelConfig{{Name: "m", Kind: "file", Path: "does-not-exist.yaml"}}
		}, Options{}},
		{"duplicate model", func(c *config.Config) {
			c.Models = []config.ModelConfig{
				{Name: "floor", Kind: "plane", Half: 10},
				{Name: "floor", Kind: "plane", Half: 10},
			}
		}, Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults(t)
			tt.mutate(cfg)
			tt.opts.Logger = quiet
			if r, err := New(cfg, tt.opts); err == nil {
				r.Close()
				t.Error("expected an error")
			}
		})
	}
}

func TestModelSource(t *testing.T) {
	if _, err := ModelSource(config.ModelConfig{Name: "x", Kind: "sphere"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
	src, err := ModelSource(config.ModelConfig{Name: "b", Kind: "box", Lo: [3]float64{-1, -1, -1}, Hi: [3]float64{1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	m, err := src.Load()
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "b" || len(m.Faces) != 12 {
		t.Errorf("box %q has %d faces", m.Name, len(m.Faces))
	}
}
