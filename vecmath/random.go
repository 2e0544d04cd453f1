package vecmath

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NewRand returns a deterministic random source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomUnit samples a direction uniformly on the unit sphere.
func RandomUnit(rng *rand.Rand) Vec {
	for {
		v := Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if u, ok := v.Unit(); ok {
			return u
		}
	}
}

// DeltaDirection returns the direction of v perturbed by a normal deviate of
// standard deviation sigma on each component. v should be a unit vector.
func DeltaDirection(v Vec, sigma float64, rng *rand.Rand) Vec {
	if sigma <= 0 {
		if u, ok := v.Unit(); ok {
			return u
		}
		return RandomUnit(rng)
	}
	n := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}
	d := Vec{X: v.X + n.Rand(), Y: v.Y + n.Rand(), Z: v.Z + n.Rand()}
	if u, ok := d.Unit(); ok {
		return u
	}
	return RandomUnit(rng)
}
