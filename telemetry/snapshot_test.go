package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := &Snapshot{
		Version: SnapshotVersion,
		Seed:    7,
		Frame:   120,
		Dt:      0.01,
		Cells: []CellState{
			{ID: 1, Position: [3]float64{1, 2, 3}, Radius: 40, Mass: 1},
			{ID: 2, Position: [3]float64{80, 2, 3}, Radius: 40, Mass: 1},
		},
		CellLinks:  []CellLinkState{{A: 1, B: 2, RestLength: 80, Created: 3}},
		ModelLinks: []ModelLinkState{{Model: "floor", Cell: 1, Face: 0, Side: 1}},
		Bookmark:   &Bookmark{Type: BookmarkSteadyState, Frame: 120},
	}

	path, err := SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_120_steady_state.json") {
		t.Errorf("unexpected path %s", path)
	}

	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.Frame != 120 || len(got.Cells) != 2 || got.Cells[1].Position[0] != 80 {
		t.Errorf("loaded snapshot differs: %+v", got)
	}
	if len(got.CellLinks) != 1 || got.CellLinks[0].RestLength != 80 {
		t.Errorf("cell links = %+v", got.CellLinks)
	}
	if got.ModelLinks[0].Model != "floor" {
		t.Errorf("model links = %+v", got.ModelLinks)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}

type fakeConfig struct{}

func (fakeConfig) WriteYAML(path string) error {
	return os.WriteFile(path, []byte("world: {}\n"), 0o644)
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteConfig(fakeConfig{}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndFrame: uint64(i), Cells: 3}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 10); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPopulationBoom, Frame: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := om.WriteSnapshot(&Snapshot{Version: SnapshotVersion, Frame: 5}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,cells") {
		t.Errorf("header = %q", lines[0])
	}
	for _, name := range []string{"config.yaml", "perf.csv", "bookmarks.csv", "snapshots/snapshot_5.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
}
