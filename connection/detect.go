package connection

import (
	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/spatial"
	"github.com/pthm-cable/morphogen/vecmath"
)

// Detector finds new links from the broad-phase grids. It keeps scratch
// buffers between frames.
type Detector struct {
	cand  []body.ID
	faces []mesh.FaceRef
	seen  map[mesh.FaceRef]struct{}
}

// CellCell links every pair of live agents whose centres are closer than
// Adhesion times the sum of their radii. ids gives the visiting order and
// maxRadius the largest bounding radius of the frame, which sizes the grid
// query so no neighbour within reach is missed. Each pair is considered once, from its
// lower ID. It returns the number of links created.
func (d *Detector) CellCell(ids []body.ID, lookup Lookup, grid *spatial.Grid[body.ID], maxRadius float64, links *CellLinks, p LinkParams, frame uint64) int {
	created := 0
	for _, id := range ids {
		a, ok := lookup(id)
		if !ok || a.Dead() {
			continue
		}
		ra := a.BoundingRadius()
		pa := a.Position()
		d.cand = grid.QueryInto(d.cand[:0], pa, max(p.Adhesion, 1)*(ra+maxRadius))
		for _, other := range d.cand {
			if other <= id || links.Has(id, other) {
				continue
			}
			b, ok := lookup(other)
			if !ok || b.Dead() {
				continue
			}
			reach := p.Adhesion * (ra + b.BoundingRadius())
			if b.Position().Sub(pa).SqLen() < reach*reach {
				links.Add(NewCellLink(a, b, p, frame))
				created++
			}
		}
	}
	clear(d.cand)
	return created
}

// CellModel links every live agent to the model faces it touches: the
// centre projects inside the triangle and lies closer to its plane than
// Adhesion times the agent radius. It returns the number of links created.
func (d *Detector) CellModel(ids []body.ID, lookup Lookup, grid *spatial.Grid[mesh.FaceRef], models Models, links *ModelLinks, p LinkParams, frame uint64) int {
	if d.seen == nil {
		d.seen = make(map[mesh.FaceRef]struct{})
	}
	created := 0
	for _, id := range ids {
		a, ok := lookup(id)
		if !ok || a.Dead() {
			continue
		}
		reach := p.Adhesion * a.BoundingRadius()
		pos := a.Position()
		d.faces = grid.QueryInto(d.faces[:0], pos, max(reach, a.BoundingRadius()))
		clear(d.seen)
		for _, ref := range d.faces {
			if _, dup := d.seen[ref]; dup {
				continue
			}
			d.seen[ref] = struct{}{}
			if links.Has(ref.Model, id, ref.Face) {
				continue
			}
			m, ok := models(ref.Model)
			if !ok || ref.Face >= len(m.Faces) {
				continue
			}
			side, ok := touches(m, ref.Face, pos, reach)
			if !ok {
				continue
			}
			links.Add(&ModelLink{
				Model:   ref.Model,
				Agent:   id,
				Face:    ref.Face,
				Side:    side,
				Params:  p,
				Created: frame,
			})
			created++
		}
	}
	clear(d.faces)
	return created
}

// touches reports whether pos lies within r of face i, measured along the
// face normal, and on which side of it.
func touches(m *mesh.Model, i int, pos vecmath.Vec, r float64) (float64, bool) {
	a, b, c := m.Triangle(i)
	n, ok := vecmath.TriangleNormal(a, b, c)
	if !ok {
		return 0, false
	}
	dist := vecmath.SignedDistance(a, n, pos)
	if dist >= r || dist <= -r {
		return 0, false
	}
	if !vecmath.PointInTriangle(vecmath.ProjectOnPlane(a, n, pos), a, b, c) {
		return 0, false
	}
	if dist < 0 {
		return -1, true
	}
	return 1, true
}
