package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is the mechanical state of a world at a frame.
type Snapshot struct {
	Version int     `json:"version"`
	Seed    uint64  `json:"seed"`
	Frame   uint64  `json:"frame"`
	Dt      float64 `json:"dt"`

	Cells      []CellState      `json:"cells"`
	CellLinks  []CellLinkState  `json:"cell_links"`
	ModelLinks []ModelLinkState `json:"model_links"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CellState is one agent.
type CellState struct {
	ID       uint64     `json:"id"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Axis     [3]float64 `json:"axis"`
	Angle    float64    `json:"angle"`
	Radius   float64    `json:"radius"`
	Mass     float64    `json:"mass"`
}

// CellLinkState is one cell-cell link.
type CellLinkState struct {
	A          uint64  `json:"a"`
	B          uint64  `json:"b"`
	RestLength float64 `json:"rest_length"`
	Created    uint64  `json:"created"`
}

// ModelLinkState is one cell-model link.
type ModelLinkState struct {
	Model string  `json:"model"`
	Cell  uint64  `json:"cell"`
	Face  int     `json:"face"`
	Side  float64 `json:"side"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
