package scripting

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/morphogen/cell"
	"github.com/pthm-cable/morphogen/vecmath"
	"github.com/pthm-cable/morphogen/world"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const growScript = `
function decide(s)
  if s.age > 1 then return {die = true} end
  if s.radius >= 12 then return {divide = true} end
  return {grow = 2 * s.dt, force = {x = 0, y = s.mass, z = s.position.x}}
end
`

func loadFile(t *testing.T, src string) *Program {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cell.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path, quiet)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestDecide(t *testing.T) {
	p := loadFile(t, growScript)
	rng := vecmath.NewRand(1)
	tests := []struct {
		name string
		s    cell.State
		want cell.Decision
	}{
		{"grow", cell.State{Dt: 0.5, Radius: 10, Mass: 3, Position: vecmath.V(7, 0, 0)}, cell.Decision{Grow: 1, Force: vecmath.V(0, 3, 7)}},
		{"divide", cell.State{Dt: 0.5, Radius: 12}, cell.Decision{Divide: true}},
		{"die", cell.State{Age: 2, Radius: 12}, cell.Decision{Die: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Decide(tt.s, rng); got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if p.Errors() != 0 {
		t.Errorf("Errors() = %d", p.Errors())
	}
}

func TestRandomUsesWorldStream(t *testing.T) {
	p, err := LoadString(`function decide(s) return {grow = random()} end`, quiet)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	want := vecmath.NewRand(5).Float64()
	if got := p.Decide(cell.State{}, vecmath.NewRand(5)); got.Grow != want {
		t.Errorf("grow = %v, want %v", got.Grow, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "function decide(s"},
		{"no decide", "x = 1"},
		{"decide not a function", "decide = 3"},
		{"random at load time", "local r = random()\nfunction decide(s) return {} end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p, err := LoadString(tt.src, quiet); err == nil {
				p.Close()
				t.Error("expected an error")
			}
		})
	}
	if _, err := LoadString("x = 1", quiet); !errors.Is(err, ErrNoDecide) {
		t.Errorf("error = %v, want ErrNoDecide", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.lua"), quiet); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDecideFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"runtime error", `function decide(s) error("boom") end`},
		{"non-table result", `function decide(s) return 4 end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadString(tt.src, quiet)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Close()
			if got := p.Decide(cell.State{}, vecmath.NewRand(1)); got != (cell.Decision{}) {
				t.Errorf("Decide() = %+v, want the zero decision", got)
			}
			if p.Errors() != 1 {
				t.Errorf("Errors() = %d, want 1", p.Errors())
			}
		})
	}
}

func TestScriptedCellsInWorld(t *testing.T) {
	p := loadFile(t, `
function decide(s)
  if s.radius >= 11.5 then return {divide = true} end
  return {grow = 100 * s.dt}
end
`)
	w := world.New[*cell.Cell](world.Options{Logger: quiet, Workers: 1})
	defer w.Close()

	rng := vecmath.NewRand(2)
	w.AddAgent(cell.New(vecmath.Zero, 1, 10, p, rng, cell.Options{}))

	// 10 -> 11 -> 12, then division.
	for range 3 {
		w.Step()
	}
	if w.Len() != 2 {
		t.Errorf("len = %d after the division step", w.Len())
	}
	if p.Errors() != 0 {
		t.Errorf("script errors: %d", p.Errors())
	}
}
