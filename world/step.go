package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/telemetry"
)

// Step advances the world by one timestep. Phases run in a fixed order and
// visit agents in ascending ID order:
//
//  1. model grid refresh
//  2. pre-update: stats, force reset, queued external forces
//  3. world forces: drag and gravity
//  4. link forces and pruning
//  5. integration
//  6. agent grid rebuild and link detection
//  7. behaviour and spawning
//  8. reaping of dead agents
//
// Per-agent phases and link force computation may run on several
// goroutines; the outcome does not depend on the worker count.
func (w *World[A]) Step() {
	if w.stepping {
		panic("world: Step called re-entrantly")
	}
	w.stepping = true
	defer func() { w.stepping = false }()

	w.last = FrameStats{}
	w.perf.StartTick()

	w.perf.StartPhase(telemetry.PhaseModelGrid)
	w.RefreshModelGrid()

	w.perf.StartPhase(telemetry.PhasePreUpdate)
	w.preUpdate()

	w.perf.StartPhase(telemetry.PhaseWorldForces)
	w.applyWorldForces()

	w.perf.StartPhase(telemetry.PhaseConnections)
	w.updateConnections()

	w.perf.StartPhase(telemetry.PhaseIntegration)
	w.integrate()

	w.perf.StartPhase(telemetry.PhaseDetection)
	w.detect()

	w.perf.StartPhase(telemetry.PhaseBehavior)
	w.updateBehavior()

	w.perf.StartPhase(telemetry.PhaseReap)
	w.reap()

	w.frame++
	w.perf.EndTick()
}

// snapshotOrder captures the canonical agent order for this step.
func (w *World[A]) snapshotOrder() {
	w.order = w.order[:0]
	clear(w.agents)
	w.agents = w.agents[:0]
	for id, e := range w.entities.All() {
		w.order = append(w.order, id)
		w.agents = append(w.agents, w.slots.Get(e).agent)
	}
}

func (w *World[A]) preUpdate() {
	w.snapshotOrder()
	w.pool.run(len(w.agents), func(lo, hi int) {
		for _, a := range w.agents[lo:hi] {
			a.UpdateStats()
			a.ResetForces()
			a.ApplyExternal()
		}
	})
}

// rebuildCellGrid re-inserts every agent at its integrated position and
// records the largest radius of the frame.
func (w *World[A]) rebuildCellGrid() {
	w.cellGrid.Clear()
	w.maxRadius = 0
	for i, a := range w.agents {
		w.cellGrid.Insert(w.order[i], a.Position())
		w.maxRadius = max(w.maxRadius, a.BoundingRadius())
	}
}

// applyWorldForces adds Stokes drag and gravity.
func (w *World[A]) applyWorldForces() {
	g := w.params.Gravity
	drag := -6 * math.Pi * w.params.Viscosity
	w.pool.run(len(w.agents), func(lo, hi int) {
		for _, a := range w.agents[lo:hi] {
			f := a.Velocity().Scale(drag * a.BoundingRadius())
			a.ReceiveForce(f.Add(g.Scale(a.Mass())))
		}
	})
}

func (w *World[A]) updateConnections() {
	cells := w.cellLinks.Update(w.lookup, w.pool.run)
	models := w.modelLinks.Update(w.lookup, w.models.Get, w.pool.run)

	w.last.LinksBroken = cells.Broken + models.Broken
	w.last.LinksDangling = cells.Dangling + models.Dangling
	if w.last.LinksDangling > 0 {
		w.logger.Warn("dropped dangling links",
			"frame", w.frame,
			"cell_links", cells.Dangling,
			"model_links", models.Dangling,
		)
	}
}

func (w *World[A]) integrate() {
	dt := w.params.Dt
	w.pool.run(len(w.agents), func(lo, hi int) {
		for _, a := range w.agents[lo:hi] {
			w.integ.Integrate(a, dt)
		}
	})
}

// detect rebuilds the agent grid from the positions integration just
// produced, then creates new links.
func (w *World[A]) detect() {
	w.rebuildCellGrid()
	if w.params.CellCellCollisions {
		w.last.LinksCreated = w.detector.CellCell(
			w.order, w.lookup, w.cellGrid, w.maxRadius,
			w.cellLinks, w.params.CellLink, w.frame,
		)
	}
	if w.params.CellModelCollisions && w.models.Len() > 0 {
		w.last.ModelLinksCreated = w.detector.CellModel(
			w.order, w.lookup, w.modelGrid, w.models.Get,
			w.modelLinks, w.params.ModelLink, w.frame,
		)
	}
}

// updateBehavior runs every live agent's behaviour and registers the
// spawned agents afterwards, so a spawn never behaves in its birth frame.
func (w *World[A]) updateBehavior() {
	if w.behave == nil {
		return
	}
	dt := w.params.Dt
	for _, a := range w.agents {
		if a.Dead() {
			continue
		}
		if child, ok := w.behave(a, dt); ok && !isNil(child) {
			w.spawns = append(w.spawns, child)
		}
	}
	for _, child := range w.spawns {
		id := w.AddAgent(child)
		w.logger.Debug("agent spawned", "id", id, "frame", w.frame)
	}
	w.last.Spawned = len(w.spawns)
	clear(w.spawns)
	w.spawns = w.spawns[:0]
}

// reap severs every link of the dead agents in one pass per container,
// then removes them.
func (w *World[A]) reap() {
	w.dead = w.dead[:0]
	for id, e := range w.entities.All() {
		if w.slots.Get(e).agent.Dead() {
			w.dead = append(w.dead, id)
		}
	}
	if len(w.dead) == 0 {
		return
	}
	cells := w.cellLinks.DisconnectAll(w.dead)
	models := w.modelLinks.DisconnectAgents(w.dead)
	w.entities.DeleteFunc(func(id body.ID, e ecs.Entity) bool {
		if !w.slots.Get(e).agent.Dead() {
			return false
		}
		w.arena.RemoveEntity(e)
		w.logger.Debug("agent reaped", "id", id, "frame", w.frame)
		return true
	})
	w.last.Reaped = len(w.dead)
	w.logger.Debug("reaped agents",
		"frame", w.frame,
		"count", len(w.dead),
		"cell_links", cells,
		"model_links", models,
	)
}
