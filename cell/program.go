package cell

import (
	"math/rand/v2"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/vecmath"
)

// State is what a program sees of its cell each frame.
type State struct {
	ID         body.ID
	Generation int
	Age        float64 // seconds since birth
	Dt         float64
	Radius     float64
	Mass       float64
	Position   vecmath.Vec
	Velocity   vecmath.Vec
}

// Decision is a program's verdict for one frame. Die takes precedence over
// everything else; growth is applied before division.
type Decision struct {
	Grow   float64 // radius increment
	Divide bool
	Die    bool
	Force  vecmath.Vec // queued for the next frame
}

// Program decides what a cell does. rng is the world's behaviour stream
// and is only used from the behaviour phase.
type Program interface {
	Decide(s State, rng *rand.Rand) Decision
}

// ProgramFunc adapts a function to Program.
type ProgramFunc func(s State, rng *rand.Rand) Decision

func (f ProgramFunc) Decide(s State, rng *rand.Rand) Decision { return f(s, rng) }

// GrowDivide grows cells at a constant rate until they reach the division
// radius. Cells die of old age or at random.
type GrowDivide struct {
	GrowthRate     float64 // radius units per second
	DivisionRadius float64
	MaxAge         float64 // seconds; 0 disables
	DeathRate      float64 // probability per second
}

func (g GrowDivide) Decide(s State, rng *rand.Rand) Decision {
	if g.MaxAge > 0 && s.Age >= g.MaxAge {
		return Decision{Die: true}
	}
	if g.DeathRate > 0 && rng.Float64() < g.DeathRate*s.Dt {
		return Decision{Die: true}
	}
	if g.DivisionRadius > 0 && s.Radius >= g.DivisionRadius {
		return Decision{Divide: true}
	}
	return Decision{Grow: g.GrowthRate * s.Dt}
}
