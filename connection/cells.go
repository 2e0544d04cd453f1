package connection

import (
	"iter"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/ordered"
	"github.com/pthm-cable/morphogen/vecmath"
)

// Runner runs fn over [0, n), possibly split into chunks on several
// goroutines. Chunks must write disjoint state.
type Runner func(n int, fn func(lo, hi int))

// Serial runs fn on the calling goroutine.
func Serial(n int, fn func(lo, hi int)) {
	if n > 0 {
		fn(0, n)
	}
}

// Pruned counts the links removed by an update.
type Pruned struct {
	Broken   int // link reported itself broken
	Dangling int // an endpoint no longer resolves
}

type result struct {
	force    vecmath.Vec
	broken   bool
	dangling bool
}

// CellLinks holds every cell-cell link, at most one per unordered pair, and
// an adjacency index for per-agent queries. Iteration follows creation order.
type CellLinks struct {
	links *ordered.Map[Pair, *CellLink]
	adj   map[body.ID]*ordered.Map[body.ID, struct{}]

	buf []result
}

// NewCellLinks returns an empty container.
func NewCellLinks() *CellLinks {
	return &CellLinks{
		links: ordered.NewMap[Pair, *CellLink](64),
		adj:   make(map[body.ID]*ordered.Map[body.ID, struct{}]),
	}
}

// Len returns the number of links.
func (c *CellLinks) Len() int { return c.links.Len() }

// Has reports whether a and b are linked.
func (c *CellLinks) Has(a, b body.ID) bool {
	return c.links.Has(ordered.MakePair(a, b))
}

// Get returns the link between a and b.
func (c *CellLinks) Get(a, b body.ID) (*CellLink, bool) {
	return c.links.Get(ordered.MakePair(a, b))
}

// Add inserts l unless its pair is already linked.
func (c *CellLinks) Add(l *CellLink) bool {
	if c.links.Has(l.Pair) {
		return false
	}
	c.links.Set(l.Pair, l)
	c.neighbors(l.Pair.First).Set(l.Pair.Second, struct{}{})
	c.neighbors(l.Pair.Second).Set(l.Pair.First, struct{}{})
	return true
}

func (c *CellLinks) neighbors(id body.ID) *ordered.Map[body.ID, struct{}] {
	n, ok := c.adj[id]
	if !ok {
		n = ordered.NewMap[body.ID, struct{}](4)
		c.adj[id] = n
	}
	return n
}

// Remove deletes the link between a and b.
func (c *CellLinks) Remove(a, b body.ID) bool {
	p := ordered.MakePair(a, b)
	if !c.links.Delete(p) {
		return false
	}
	c.unindex(p)
	return true
}

func (c *CellLinks) unindex(p Pair) {
	c.unlinkOne(p.First, p.Second)
	c.unlinkOne(p.Second, p.First)
}

func (c *CellLinks) unlinkOne(from, to body.ID) {
	n, ok := c.adj[from]
	if !ok {
		return
	}
	n.Delete(to)
	if n.Len() == 0 {
		delete(c.adj, from)
	}
}

// Neighbors iterates over the agents linked to id, in link creation order.
func (c *CellLinks) Neighbors(id body.ID) iter.Seq[body.ID] {
	n, ok := c.adj[id]
	if !ok {
		return func(func(body.ID) bool) {}
	}
	return n.Keys()
}

// Degree returns the number of links of id.
func (c *CellLinks) Degree(id body.ID) int {
	if n, ok := c.adj[id]; ok {
		return n.Len()
	}
	return 0
}

// Disconnect removes every link of id and returns how many were removed.
func (c *CellLinks) Disconnect(id body.ID) int {
	return c.DisconnectAll([]body.ID{id})
}

// DisconnectAll removes every link touching any of ids in a single pass
// over the links, keeping the survivors in creation order. It returns the
// number of links removed.
func (c *CellLinks) DisconnectAll(ids []body.ID) int {
	gone := make(map[body.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := c.adj[id]; ok {
			gone[id] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return 0
	}
	return c.links.DeleteFunc(func(p Pair, _ *CellLink) bool {
		_, first := gone[p.First]
		_, second := gone[p.Second]
		if !first && !second {
			return false
		}
		c.unindex(p)
		return true
	})
}

// All iterates over the links in creation order.
func (c *CellLinks) All() iter.Seq2[Pair, *CellLink] {
	return c.links.All()
}

// Pairs returns the linked pairs in creation order.
func (c *CellLinks) Pairs() []Pair {
	out := make([]Pair, 0, c.links.Len())
	for p := range c.links.Keys() {
		out = append(out, p)
	}
	return out
}

// Clear removes every link.
func (c *CellLinks) Clear() {
	c.links.Clear()
	clear(c.adj)
}

// Update computes every link force from the current agent state, applies
// the forces to both endpoints in creation order, then drops broken and
// dangling links. The computation runs through run; application is serial,
// so the result does not depend on how run splits the work.
func (c *CellLinks) Update(lookup Lookup, run Runner) Pruned {
	n := c.links.Len()
	c.buf = grow(c.buf, n)

	run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p, l := c.links.At(i)
			r := &c.buf[i]
			*r = result{}
			a, okA := lookup(p.First)
			b, okB := lookup(p.Second)
			if !okA || !okB {
				r.dangling = true
				continue
			}
			if l.Broken(a, b) {
				r.broken = true
				continue
			}
			r.force = l.Force(a, b)
		}
	})

	var pr Pruned
	for i := 0; i < n; i++ {
		r := c.buf[i]
		switch {
		case r.dangling:
			pr.Dangling++
		case r.broken:
			pr.Broken++
		default:
			p, _ := c.links.At(i)
			a, _ := lookup(p.First)
			b, _ := lookup(p.Second)
			a.ReceiveForce(r.force)
			b.ReceiveForce(r.force.Neg())
		}
	}

	if pr.Broken+pr.Dangling > 0 {
		i := 0
		c.links.DeleteFunc(func(p Pair, _ *CellLink) bool {
			r := c.buf[i]
			i++
			if r.broken || r.dangling {
				c.unindex(p)
				return true
			}
			return false
		})
	}
	return pr
}

func grow(buf []result, n int) []result {
	if cap(buf) < n {
		return make([]result, n)
	}
	return buf[:n]
}
