// Package cell provides a mechanical body driven by a behaviour program:
// cells grow, divide along a jittered axis and die.
package cell

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/vecmath"
)

// Options are shared by a cell and its descendants.
type Options struct {
	// MinRadius is the smallest radius a daughter starts with.
	MinRadius float64
	// DivisionSigma is the noise added to the parent division axis.
	DivisionSigma float64
}

// Cell is a sphere with a behaviour. It implements body.Agent and
// body.Behaver[*Cell].
type Cell struct {
	body.Body

	program    Program
	rng        *rand.Rand
	opts       Options
	age        float64
	generation int
	axis       vecmath.Vec // last division direction
}

// New returns a generation-zero cell. program and rng are inherited by
// every descendant.
func New(pos vecmath.Vec, mass, radius float64, program Program, rng *rand.Rand, opts Options) *Cell {
	return &Cell{
		Body:    body.New(pos, mass, radius),
		program: program,
		rng:     rng,
		opts:    opts,
		axis:    vecmath.RandomUnit(rng),
	}
}

func (c *Cell) Age() float64 { return c.age }
func (c *Cell) Generation() int { return c.generation }

// Axis is the direction of the last division, or the initial random axis.
func (c *Cell) Axis() vecmath.Vec { return c.axis }

func (c *Cell) state(dt float64) State {
	return State{
		ID:         c.ID(),
		Generation: c.generation,
		Age:        c.age,
		Dt:         dt,
		Radius:     c.BoundingRadius(),
		Mass:       c.Mass(),
		Position:   c.Position(),
		Velocity:   c.Velocity(),
	}
}

// UpdateBehavior ages the cell and applies its program's decision. A
// division returns the daughter.
func (c *Cell) UpdateBehavior(dt float64) (*Cell, bool) {
	c.age += dt
	if c.program == nil {
		return nil, false
	}

	d := c.program.Decide(c.state(dt), c.rng)
	if d.Die {
		c.Kill()
		return nil, false
	}
	if d.Grow != 0 {
		c.resize(c.BoundingRadius() + d.Grow)
	}
	if !d.Force.IsZero() {
		c.QueueForce(d.Force)
	}
	if !d.Divide {
		return nil, false
	}
	return c.divide(), true
}

// resize changes the radius at constant density.
func (c *Cell) resize(r float64) {
	r = max(r, c.opts.MinRadius)
	old := c.BoundingRadius()
	if old > 0 {
		k := r / old
		c.SetMass(c.Mass() * k * k * k)
	}
	c.SetRadius(r)
}

// divide splits the cell in two halves of equal volume placed on either
// side of the old centre along a jittered copy of the previous axis.
func (c *Cell) divide() *Cell {
	dir := vecmath.DeltaDirection(c.axis, c.opts.DivisionSigma, c.rng)
	c.resize(c.BoundingRadius() / math.Cbrt(2))
	r := c.BoundingRadius()
	centre := c.Position()

	child := &Cell{
		Body:       body.New(centre.Add(dir.Scale(r/2)), c.Mass(), r),
		program:    c.program,
		rng:        c.rng,
		opts:       c.opts,
		generation: c.generation + 1,
		axis:       dir,
	}
	child.SetVelocity(c.Velocity())
	child.SetOrientation(c.Orientation())

	c.SetPosition(centre.Sub(dir.Scale(r / 2)))
	c.generation++
	c.age = 0
	c.axis = dir
	return child
}
