// Package connection implements the mechanical links between cells and
// between cells and model faces: their forces, their containers and their
// creation from proximity.
package connection

import (
	"math"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/ordered"
	"github.com/pthm-cable/morphogen/vecmath"
)

// LinkParams describes a family of links.
type LinkParams struct {
	Stiffness  float64 // spring constant
	Damping    float64 // damping on the relative normal velocity
	BreakRatio float64 // break when the distance exceeds BreakRatio times the rest distance
	Adhesion   float64 // create when the distance is below Adhesion times the rest distance
}

// Lookup resolves an agent ID. It must be safe for concurrent readers.
type Lookup func(body.ID) (body.Agent, bool)

// Models resolves a registered model by name.
type Models func(name string) (*mesh.Model, bool)

// Pair is the canonical key of a cell-cell link.
type Pair = ordered.Pair[body.ID]

// CellLink is a damped spring between two agents.
type CellLink struct {
	Pair       Pair
	RestLength float64
	Params     LinkParams
	Created    uint64 // frame of creation
}

// NewCellLink links a and b at rest length ra+rb.
func NewCellLink(a, b body.Agent, p LinkParams, frame uint64) *CellLink {
	return &CellLink{
		Pair:       ordered.MakePair(a.ID(), b.ID()),
		RestLength: a.BoundingRadius() + b.BoundingRadius(),
		Params:     p,
		Created:    frame,
	}
}

// direction returns the unit vector from a to b and the distance. Coincident
// centres get +X so the pair still separates deterministically.
func direction(a, b body.Agent) (vecmath.Vec, float64) {
	d := b.Position().Sub(a.Position())
	l := d.Len()
	if l == 0 {
		return vecmath.UnitX, 0
	}
	return d.Div(l), l
}

// Force returns the force on a; b receives the opposite. a must be the
// agent of l.Pair.First.
func (l *CellLink) Force(a, b body.Agent) vecmath.Vec {
	u, dist := direction(a, b)
	stretch := dist - l.RestLength
	vn := b.Velocity().Sub(a.Velocity()).Dot(u)
	return u.Scale(l.Params.Stiffness*stretch + l.Params.Damping*vn)
}

// Broken reports whether the agents drifted beyond the breaking distance.
func (l *CellLink) Broken(a, b body.Agent) bool {
	limit := l.Params.BreakRatio * (a.BoundingRadius() + b.BoundingRadius())
	return b.Position().Sub(a.Position()).SqLen() > limit*limit
}

// ModelLink holds an agent against one face of a model.
type ModelLink struct {
	Model   string
	Agent   body.ID
	Face    int
	Side    float64 // +1 when the agent is on the side the face normal points to, else -1
	Params  LinkParams
	Created uint64
}

// Ref returns the face the link is attached to.
func (l *ModelLink) Ref() mesh.FaceRef {
	return mesh.FaceRef{Model: l.Model, Face: l.Face}
}

// plane returns a point of the face and the normal oriented toward the agent.
func (l *ModelLink) plane(m *mesh.Model) (o, n vecmath.Vec, ok bool) {
	if l.Face < 0 || l.Face >= len(m.Faces) {
		return o, n, false
	}
	a, b, c := m.Triangle(l.Face)
	n, ok = vecmath.TriangleNormal(a, b, c)
	return a, n.Scale(l.Side), ok
}

// Force is the penalty spring keeping the agent centre one radius away from
// the face plane, with damping on the normal velocity.
func (l *ModelLink) Force(a body.Agent, m *mesh.Model) vecmath.Vec {
	o, n, ok := l.plane(m)
	if !ok {
		return vecmath.Zero
	}
	d := vecmath.SignedDistance(o, n, a.Position())
	stretch := d - a.BoundingRadius()
	vn := a.Velocity().Dot(n)
	return n.Scale(-(l.Params.Stiffness*stretch + l.Params.Damping*vn))
}

// Broken reports whether the agent left the face: its projection fell
// outside the triangle or it moved beyond the breaking distance.
func (l *ModelLink) Broken(a body.Agent, m *mesh.Model) bool {
	o, n, ok := l.plane(m)
	if !ok {
		return true
	}
	p := a.Position()
	d := vecmath.SignedDistance(o, n, p)
	if math.Abs(d) > l.Params.BreakRatio*a.BoundingRadius() {
		return true
	}
	ta, tb, tc := m.Triangle(l.Face)
	return !vecmath.PointInTriangle(vecmath.ProjectOnPlane(o, n, p), ta, tb, tc)
}
