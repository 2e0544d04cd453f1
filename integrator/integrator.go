// Package integrator advances agent state by one timestep.
package integrator

import (
	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/vecmath"
)

// Integrator advances one agent by dt from its accumulated force and torque.
type Integrator interface {
	Integrate(k body.Kinematic, dt float64)
}

// Euler is semi-implicit Euler: velocities are updated first and the new
// velocities move the body. It is the default.
type Euler struct{}

func (Euler) Integrate(k body.Kinematic, dt float64) {
	v := k.Velocity().Add(k.Force().Scale(dt / k.Mass()))
	k.SetVelocity(v)
	k.SetPosition(k.Position().Add(v.Scale(dt)))

	w := k.AngularVelocity().Add(k.Torque().Scale(dt / k.MomentOfInertia()))
	k.SetAngularVelocity(w)
	k.SetOrientation(vecmath.AddAsAngularVelocity(w.Scale(dt), k.Orientation()))
}

// Explicit is forward Euler: the body moves with its start-of-step velocity.
type Explicit struct{}

func (Explicit) Integrate(k body.Kinematic, dt float64) {
	v0 := k.Velocity()
	w0 := k.AngularVelocity()

	k.SetPosition(k.Position().Add(v0.Scale(dt)))
	k.SetOrientation(vecmath.AddAsAngularVelocity(w0.Scale(dt), k.Orientation()))

	k.SetVelocity(v0.Add(k.Force().Scale(dt / k.Mass())))
	k.SetAngularVelocity(w0.Add(k.Torque().Scale(dt / k.MomentOfInertia())))
}

// ByName returns the integrator registered under name, Euler for "".
func ByName(name string) (Integrator, bool) {
	switch name {
	case "", "euler":
		return Euler{}, true
	case "explicit":
		return Explicit{}, true
	}
	return nil, false
}
