// Package world owns a population of agents, the static models they interact
// with and the links between them, and advances everything by fixed steps.
package world

import (
	"errors"
	"iter"
	"log/slog"
	"reflect"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/connection"
	"github.com/pthm-cable/morphogen/integrator"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/ordered"
	"github.com/pthm-cable/morphogen/spatial"
	"github.com/pthm-cable/morphogen/telemetry"
	"github.com/pthm-cable/morphogen/vecmath"
)

var (
	ErrDuplicateModel = errors.New("model already registered")
	ErrUnknownModel   = errors.New("unknown model")
	ErrNonFinite      = errors.New("non-finite state")
)

// Params are the global physics parameters.
type Params struct {
	Dt        float64
	Gravity   vecmath.Vec
	Viscosity float64

	CellCellCollisions  bool
	CellModelCollisions bool

	// Bucket sizes of the agent and model grids.
	AgentCellSize float64
	ModelCellSize float64

	CellLink  connection.LinkParams
	ModelLink connection.LinkParams
}

// DefaultParams matches the embedded configuration defaults for a nominal
// cell radius of 40.
func DefaultParams() Params {
	return Params{
		Dt:                  0.01,
		Viscosity:           0.0003,
		CellCellCollisions:  true,
		CellModelCollisions: true,
		AgentCellSize:       4.5 * 40,
		ModelCellSize:       5 * 40,
		CellLink:            connection.LinkParams{Stiffness: 20, Damping: 2, BreakRatio: 1.3, Adhesion: 1.05},
		ModelLink:           connection.LinkParams{Stiffness: 40, Damping: 4, BreakRatio: 1.5, Adhesion: 1},
	}
}

// Options configure a new world. Zero values select the defaults.
type Options struct {
	Params     Params
	Integrator integrator.Integrator    // Euler when nil
	Logger     *slog.Logger             // slog.Default() when nil
	Perf       *telemetry.PerfCollector // optional phase timing
	Workers    int                      // 0 = GOMAXPROCS, 1 = serial
}

// FrameStats are the lifecycle events of the last step.
type FrameStats = telemetry.FrameCounts

// slot is the ark component holding an agent.
type slot[A body.Agent] struct {
	agent A
}

// World is the simulation. It is not safe for concurrent use.
type World[A body.Agent] struct {
	params Params
	integ  integrator.Integrator
	logger *slog.Logger
	perf   *telemetry.PerfCollector
	pool   *pool

	arena    *ecs.World
	slots    *ecs.Map1[slot[A]]
	entities *ordered.Map[body.ID, ecs.Entity]
	nextID   body.ID

	// Per-step snapshot of the canonical order.
	order  []body.ID
	agents []A

	models      *ordered.Map[string, *mesh.Model]
	modelsDirty bool

	cellGrid   *spatial.Grid[body.ID]
	modelGrid  *spatial.Grid[mesh.FaceRef]
	cellLinks  *connection.CellLinks
	modelLinks *connection.ModelLinks
	detector   connection.Detector

	behave func(A, float64) (A, bool)
	spawns []A
	dead   []body.ID

	frame     uint64
	maxRadius float64
	last      FrameStats
	stepping  bool
}

// New creates an empty world.
func New[A body.Agent](opts Options) *World[A] {
	p := opts.Params
	def := DefaultParams()
	if p.Dt <= 0 {
		p.Dt = def.Dt
	}
	if p.AgentCellSize <= 0 {
		p.AgentCellSize = def.AgentCellSize
	}
	if p.ModelCellSize <= 0 {
		p.ModelCellSize = def.ModelCellSize
	}
	integ := opts.Integrator
	if integ == nil {
		integ = integrator.Euler{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	arena := ecs.NewWorld()
	w := &World[A]{
		params:     p,
		integ:      integ,
		logger:     logger,
		perf:       opts.Perf,
		pool:       newPool(opts.Workers),
		arena:      arena,
		slots:      ecs.NewMap1[slot[A]](arena),
		entities:   ordered.NewMap[body.ID, ecs.Entity](256),
		models:     ordered.NewMap[string, *mesh.Model](4),
		cellGrid:   spatial.NewGrid[body.ID](p.AgentCellSize),
		modelGrid:  spatial.NewGrid[mesh.FaceRef](p.ModelCellSize),
		cellLinks:  connection.NewCellLinks(),
		modelLinks: connection.NewModelLinks(),
		behave:     probeBehavior[A](),
	}
	return w
}

// probeBehavior returns the behaviour hook of A, or nil when A has none.
// Only concrete agent types are probed; an interface type never behaves.
func probeBehavior[A body.Agent]() func(A, float64) (A, bool) {
	var zero A
	if _, ok := any(zero).(body.Behaver[A]); !ok {
		return nil
	}
	return func(a A, dt float64) (A, bool) {
		return any(a).(body.Behaver[A]).UpdateBehavior(dt)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// AddAgent registers a and assigns its ID. A nil agent is ignored and
// yields NoID.
func (w *World[A]) AddAgent(a A) body.ID {
	if isNil(a) {
		return body.NoID
	}
	w.nextID++
	id := w.nextID
	a.SetID(id)
	e := w.slots.NewEntity(&slot[A]{agent: a})
	w.entities.Set(id, e)
	return id
}

// Agent returns the agent registered under id. Reaped IDs miss.
func (w *World[A]) Agent(id body.ID) (A, bool) {
	e, ok := w.entities.Get(id)
	if !ok || !w.arena.Alive(e) {
		var zero A
		return zero, false
	}
	return w.slots.Get(e).agent, true
}

// lookup adapts Agent for the connection package. It only reads, so link
// workers may call it concurrently.
func (w *World[A]) lookup(id body.ID) (body.Agent, bool) {
	a, ok := w.Agent(id)
	if !ok {
		return nil, false
	}
	return a, true
}

// Len returns the number of agents.
func (w *World[A]) Len() int { return w.entities.Len() }

// Agents iterates over the agents in ID order.
func (w *World[A]) Agents() iter.Seq2[body.ID, A] {
	return func(yield func(body.ID, A) bool) {
		for id, e := range w.entities.All() {
			if !yield(id, w.slots.Get(e).agent) {
				return
			}
		}
	}
}

// IDs returns the agent IDs in ascending order.
func (w *World[A]) IDs() []body.ID {
	ids := make([]body.ID, 0, w.entities.Len())
	for id := range w.entities.Keys() {
		ids = append(ids, id)
	}
	return ids
}

// release severs every link of id and removes it from the arena. The
// caller removes it from the entity index.
func (w *World[A]) release(id body.ID, e ecs.Entity) int {
	n := w.cellLinks.Disconnect(id) + w.modelLinks.DisconnectAgent(id)
	w.arena.RemoveEntity(e)
	return n
}

// Close releases every agent and empties both grids and both link
// containers. The world must not be stepped afterwards.
func (w *World[A]) Close() {
	for id, e := range w.entities.All() {
		w.release(id, e)
	}
	w.entities.Clear()
	w.cellLinks.Clear()
	w.modelLinks.Clear()
	w.cellGrid.Clear()
	w.modelGrid.Clear()
	w.pool.stop()
	clear(w.agents)
	w.agents = w.agents[:0]
	w.order = w.order[:0]
}

func (w *World[A]) Params() Params { return w.params }

func (w *World[A]) Dt() float64 { return w.params.Dt }

// SetDt changes the timestep. dt must be positive.
func (w *World[A]) SetDt(dt float64) {
	if dt <= 0 {
		panic("world: timestep must be positive")
	}
	w.params.Dt = dt
}

func (w *World[A]) Gravity() vecmath.Vec { return w.params.Gravity }
func (w *World[A]) SetGravity(g vecmath.Vec) { w.params.Gravity = g }
func (w *World[A]) Viscosity() float64 { return w.params.Viscosity }
func (w *World[A]) SetViscosity(v float64) { w.params.Viscosity = v }
func (w *World[A]) SetCellCellCollisions(on bool) { w.params.CellCellCollisions = on }

func (w *World[A]) SetCellModelCollisions(on bool) { w.params.CellModelCollisions = on }

// SetCellLinkParams applies to links created from now on.
func (w *World[A]) SetCellLinkParams(p connection.LinkParams) { w.params.CellLink = p }

// SetModelLinkParams applies to links created from now on.
func (w *World[A]) SetModelLinkParams(p connection.LinkParams) { w.params.ModelLink = p }
