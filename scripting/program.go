// Package scripting runs cell behaviour programs written in Lua.
//
// A script defines a global function decide(state) returning a table:
//
//	function decide(s)
//	  if s.radius >= 48 then return {divide = true} end
//	  return {grow = 4 * s.dt}
//	end
//
// The state table has the fields id, generation, age, dt, radius, mass,
// position and velocity (tables with x, y, z). The result may set grow,
// divide, die and force. random() returns a uniform number in [0, 1) from
// the world's behaviour stream.
package scripting

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	lua "github.com/yuin/gopher-lua"

	"github.com/pthm-cable/morphogen/cell"
	"github.com/pthm-cable/morphogen/vecmath"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

// ErrNoDecide is returned for a script without a decide function.
var ErrNoDecide = errors.New("script does not define decide")

// Program is a cell.Program backed by a Lua VM. It must only be used from
// one goroutine; the world calls behaviours serially.
type Program struct {
	vm     *lua.LState
	decide lua.LValue
	log    *slog.Logger

	rng    *rand.Rand // valid during Decide
	errors int
}

// Load compiles the script at path.
func Load(path string, logger *slog.Logger) (*Program, error) {
	return load(logger, func(vm *lua.LState) error { return vm.DoFile(path) })
}

// LoadString compiles a script held in memory.
func LoadString(src string, logger *slog.Logger) (*Program, error) {
	return load(logger, func(vm *lua.LState) error { return vm.DoString(src) })
}

func load(logger *slog.Logger, run func(*lua.LState) error) (*Program, error) {
	if logger == nil {
		logger = slog.Default()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	p := &Program{vm: vm, log: logger}

	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
	vm.SetGlobal("random", vm.NewFunction(p.random))

	if err := run(vm); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	p.decide = vm.GetGlobal("decide")
	if p.decide.Type() != lua.LTFunction {
		vm.Close()
		return nil, ErrNoDecide
	}
	return p, nil
}

func (p *Program) random(L *lua.LState) int {
	if p.rng == nil {
		L.RaiseError("random() is only available inside decide")
		return 0
	}
	L.Push(lua.LNumber(p.rng.Float64()))
	return 1
}

// Decide calls decide(state). A script error or a non-table result is
// logged and yields the zero decision.
func (p *Program) Decide(s cell.State, rng *rand.Rand) cell.Decision {
	p.rng = rng
	defer func() { p.rng = nil }()

	t := p.vm.NewTable()
	t.RawSetString("id", lua.LNumber(s.ID))
	t.RawSetString("generation", lua.LNumber(s.Generation))
	t.RawSetString("age", lua.LNumber(s.Age))
	t.RawSetString("dt", lua.LNumber(s.Dt))
	t.RawSetString("radius", lua.LNumber(s.Radius))
	t.RawSetString("mass", lua.LNumber(s.Mass))
	t.RawSetString("position", p.vecTable(s.Position))
	t.RawSetString("velocity", p.vecTable(s.Velocity))

	if err := p.vm.CallByParam(lua.P{
		Fn:      p.decide,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		p.errors++
		p.log.Error("lua decide error", "cell", s.ID, "error", err)
		return cell.Decision{}
	}

	result := p.vm.Get(-1)
	p.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		p.errors++
		p.log.Error("lua decide returned non-table", "cell", s.ID, "type", result.Type().String())
		return cell.Decision{}
	}

	d := cell.Decision{
		Grow:   float64(lua.LVAsNumber(rt.RawGetString("grow"))),
		Divide: lua.LVAsBool(rt.RawGetString("divide")),
		Die:    lua.LVAsBool(rt.RawGetString("die")),
	}
	if f, ok := rt.RawGetString("force").(*lua.LTable); ok {
		d.Force = tableVec(f)
	}
	return d
}

// Errors returns the number of failed decide calls.
func (p *Program) Errors() int { return p.errors }

// Close releases the VM.
func (p *Program) Close() {
	p.vm.Close()
}

func (p *Program) vecTable(v vecmath.Vec) *lua.LTable {
	t := p.vm.NewTable()
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	t.RawSetString("z", lua.LNumber(v.Z))
	return t
}

func tableVec(t *lua.LTable) vecmath.Vec {
	return vecmath.V(
		float64(lua.LVAsNumber(t.RawGetString("x"))),
		float64(lua.LVAsNumber(t.RawGetString("y"))),
		float64(lua.LVAsNumber(t.RawGetString("z"))),
	)
}
