package world

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/connection"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/ordered"
	"github.com/pthm-cable/morphogen/spatial"
	"github.com/pthm-cable/morphogen/telemetry"
	"github.com/pthm-cable/morphogen/vecmath"
)

// Arrow is a vector anchored at a point, for overlays.
type Arrow struct {
	Origin vecmath.Vec
	Vector vecmath.Vec
}

// Frame returns the number of completed steps.
func (w *World[A]) Frame() uint64 { return w.frame }

// LastFrame returns the lifecycle events of the last step.
func (w *World[A]) LastFrame() FrameStats { return w.last }

// AllVelocities returns one arrow per agent, in ID order.
func (w *World[A]) AllVelocities() []Arrow {
	return w.arrows(body.Agent.Velocity)
}

// AllForces returns the force accumulated by each agent in the last step.
func (w *World[A]) AllForces() []Arrow {
	return w.arrows(body.Agent.Force)
}

func (w *World[A]) arrows(vec func(body.Agent) vecmath.Vec) []Arrow {
	out := make([]Arrow, 0, w.entities.Len())
	for _, a := range w.Agents() {
		out = append(out, Arrow{Origin: a.Position(), Vector: vec(a)})
	}
	return out
}

// ConnectedPairs returns every linked pair once, in creation order.
func (w *World[A]) ConnectedPairs() []ordered.Pair[body.ID] {
	return w.cellLinks.Pairs()
}

func (w *World[A]) NumCellCellConnections() int { return w.cellLinks.Len() }
func (w *World[A]) NumCellModelConnections() int { return w.modelLinks.Len() }

// CellLinks exposes the cell-cell links. Callers must not modify them.
func (w *World[A]) CellLinks() *connection.CellLinks { return w.cellLinks }

// ModelLinks exposes the cell-model links. Callers must not modify them.
func (w *World[A]) ModelLinks() *connection.ModelLinks { return w.modelLinks }

// CellGrid is the agent grid as of the last detection phase.
func (w *World[A]) CellGrid() *spatial.Grid[body.ID] { return w.cellGrid }

// ModelGrid is the model face grid as of the last refresh.
func (w *World[A]) ModelGrid() *spatial.Grid[mesh.FaceRef] { return w.modelGrid }

// MaxRadius is the largest bounding radius seen in the last step.
func (w *World[A]) MaxRadius() float64 { return w.maxRadius }

func (w *World[A]) nonFinite(vec func(body.Agent) vecmath.Vec) []body.ID {
	var ids []body.ID
	for id, a := range w.Agents() {
		if !vec(a).IsFinite() {
			ids = append(ids, id)
		}
	}
	return ids
}

// NonFinitePositions returns the agents whose position has a NaN or
// infinite component.
func (w *World[A]) NonFinitePositions() []body.ID { return w.nonFinite(body.Agent.Position) }
func (w *World[A]) NonFiniteForces() []body.ID { return w.nonFinite(body.Agent.Force) }
func (w *World[A]) NonFiniteTorques() []body.ID { return w.nonFinite(body.Agent.Torque) }

// Check returns an error wrapping ErrNonFinite for every quantity that has
// diverged, or nil.
func (w *World[A]) Check() error {
	var errs []error
	for _, c := range []struct {
		what string
		ids  []body.ID
	}{
		{"positions", w.NonFinitePositions()},
		{"forces", w.NonFiniteForces()},
		{"torques", w.NonFiniteTorques()},
	} {
		if len(c.ids) > 0 {
			errs = append(errs, fmt.Errorf("%w: %s of agents %v", ErrNonFinite, c.what, c.ids))
		}
	}
	return errors.Join(errs...)
}

// Snapshot captures the mechanical state for telemetry output.
func (w *World[A]) Snapshot() *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Frame:      w.frame,
		Dt:         w.params.Dt,
		Cells:      make([]telemetry.CellState, 0, w.entities.Len()),
		CellLinks:  make([]telemetry.CellLinkState, 0, w.cellLinks.Len()),
		ModelLinks: make([]telemetry.ModelLinkState, 0, w.modelLinks.Len()),
	}
	for id, a := range w.Agents() {
		r := a.Orientation()
		s.Cells = append(s.Cells, telemetry.CellState{
			ID:       uint64(id),
			Position: vec3(a.Position()),
			Velocity: vec3(a.Velocity()),
			Axis:     vec3(r.N),
			Angle:    r.Theta,
			Radius:   a.BoundingRadius(),
			Mass:     a.Mass(),
		})
	}
	for p, l := range w.cellLinks.All() {
		s.CellLinks = append(s.CellLinks, telemetry.CellLinkState{
			A:          uint64(p.First),
			B:          uint64(p.Second),
			RestLength: l.RestLength,
			Created:    l.Created,
		})
	}
	for l := range w.modelLinks.All() {
		s.ModelLinks = append(s.ModelLinks, telemetry.ModelLinkState{
			Model: l.Model,
			Cell:  uint64(l.Agent),
			Face:  l.Face,
			Side:  l.Side,
		})
	}
	return s
}

// Sample summarises the population for the stats collector.
func (w *World[A]) Sample() telemetry.Sample {
	s := telemetry.Sample{
		Cells:      w.entities.Len(),
		CellLinks:  w.cellLinks.Len(),
		ModelLinks: w.modelLinks.Len(),
		Speeds:     make([]float64, 0, w.entities.Len()),
	}
	for _, a := range w.Agents() {
		v := a.Velocity()
		s.Speeds = append(s.Speeds, v.Len())
		s.KineticEnergy += 0.5 * a.Mass() * v.SqLen()
	}
	return s
}

func vec3(v vecmath.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
