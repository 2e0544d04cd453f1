package connection

import (
	"iter"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/ordered"
)

type faceLinks = ordered.Map[int, *ModelLink]
type agentLinks = ordered.Map[body.ID, *faceLinks]

// ModelLinks holds the cell-model links keyed model -> agent -> face.
type ModelLinks struct {
	byModel *ordered.Map[string, *agentLinks]
	n       int

	flat []*ModelLink
	buf  []result
}

// NewModelLinks returns an empty container.
func NewModelLinks() *ModelLinks {
	return &ModelLinks{byModel: ordered.NewMap[string, *agentLinks](4)}
}

// Len returns the total number of links.
func (c *ModelLinks) Len() int { return c.n }

// LenModel returns the number of links attached to the named model.
func (c *ModelLinks) LenModel(model string) int {
	agents, ok := c.byModel.Get(model)
	if !ok {
		return 0
	}
	n := 0
	for _, faces := range agents.All() {
		n += faces.Len()
	}
	return n
}

// Get returns the link of agent id to a face of model.
func (c *ModelLinks) Get(model string, id body.ID, face int) (*ModelLink, bool) {
	agents, ok := c.byModel.Get(model)
	if !ok {
		return nil, false
	}
	faces, ok := agents.Get(id)
	if !ok {
		return nil, false
	}
	return faces.Get(face)
}

// Has reports whether agent id is linked to a face of model.
func (c *ModelLinks) Has(model string, id body.ID, face int) bool {
	_, ok := c.Get(model, id, face)
	return ok
}

// Add inserts l unless the same (model, agent, face) link exists.
func (c *ModelLinks) Add(l *ModelLink) bool {
	agents, _ := c.byModel.GetOrInsert(l.Model, func() *agentLinks {
		return ordered.NewMap[body.ID, *faceLinks](8)
	})
	faces, _ := agents.GetOrInsert(l.Agent, func() *faceLinks {
		return ordered.NewMap[int, *ModelLink](2)
	})
	if faces.Has(l.Face) {
		return false
	}
	faces.Set(l.Face, l)
	c.n++
	return true
}

// Remove deletes one link and any container it leaves empty.
func (c *ModelLinks) Remove(model string, id body.ID, face int) bool {
	agents, ok := c.byModel.Get(model)
	if !ok {
		return false
	}
	faces, ok := agents.Get(id)
	if !ok || !faces.Delete(face) {
		return false
	}
	c.n--
	if faces.Len() == 0 {
		agents.Delete(id)
		if agents.Len() == 0 {
			c.byModel.Delete(model)
		}
	}
	return true
}

// References returns the number of links of agent id across all models.
func (c *ModelLinks) References(id body.ID) int {
	n := 0
	for _, agents := range c.byModel.All() {
		if faces, ok := agents.Get(id); ok {
			n += faces.Len()
		}
	}
	return n
}

// DisconnectModel removes every link attached to model.
func (c *ModelLinks) DisconnectModel(model string) int {
	n := c.LenModel(model)
	if c.byModel.Delete(model) {
		c.n -= n
	}
	return n
}

// DisconnectAgent removes every link of agent id.
func (c *ModelLinks) DisconnectAgent(id body.ID) int {
	return c.DisconnectAgents([]body.ID{id})
}

// DisconnectAgents removes every link of the given agents, visiting each
// model's agent list once.
func (c *ModelLinks) DisconnectAgents(ids []body.ID) int {
	if len(ids) == 0 || c.n == 0 {
		return 0
	}
	gone := make(map[body.ID]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	removed := 0
	c.byModel.DeleteFunc(func(_ string, agents *agentLinks) bool {
		agents.DeleteFunc(func(id body.ID, faces *faceLinks) bool {
			if _, ok := gone[id]; !ok {
				return false
			}
			removed += faces.Len()
			return true
		})
		return agents.Len() == 0
	})
	c.n -= removed
	return removed
}

// All iterates over the links, model by model in registration order of
// their first link, then agent, then face.
func (c *ModelLinks) All() iter.Seq[*ModelLink] {
	return func(yield func(*ModelLink) bool) {
		for _, agents := range c.byModel.All() {
			for _, faces := range agents.All() {
				for _, l := range faces.All() {
					if !yield(l) {
						return
					}
				}
			}
		}
	}
}

// Clear removes every link.
func (c *ModelLinks) Clear() {
	c.byModel.Clear()
	c.n = 0
}

// Update is the model-link counterpart of CellLinks.Update. Links whose
// model is no longer registered count as dangling.
func (c *ModelLinks) Update(lookup Lookup, models Models, run Runner) Pruned {
	c.flat = c.flat[:0]
	for l := range c.All() {
		c.flat = append(c.flat, l)
	}
	n := len(c.flat)
	c.buf = grow(c.buf, n)

	run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			l := c.flat[i]
			r := &c.buf[i]
			*r = result{}
			a, okA := lookup(l.Agent)
			m, okM := models(l.Model)
			if !okA || !okM {
				r.dangling = true
				continue
			}
			if l.Broken(a, m) {
				r.broken = true
				continue
			}
			r.force = l.Force(a, m)
		}
	})

	var pr Pruned
	for i, l := range c.flat {
		r := c.buf[i]
		switch {
		case r.dangling:
			pr.Dangling++
		case r.broken:
			pr.Broken++
		default:
			a, _ := lookup(l.Agent)
			a.ReceiveForce(r.force)
			continue
		}
		c.Remove(l.Model, l.Agent, l.Face)
	}
	clear(c.flat)
	return pr
}
