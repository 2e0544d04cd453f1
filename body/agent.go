// Package body defines what the world needs from an agent and provides the
// default spherical body most agents embed.
package body

import "github.com/pthm-cable/morphogen/vecmath"

// ID identifies an agent within a world. IDs are assigned at insertion,
// increase monotonically and are never reused.
type ID uint64

// NoID is the ID of an agent that was never registered.
const NoID ID = 0

// Kinematic is the state an integrator advances.
type Kinematic interface {
	Mass() float64
	MomentOfInertia() float64

	Position() vecmath.Vec
	SetPosition(vecmath.Vec)
	Velocity() vecmath.Vec
	SetVelocity(vecmath.Vec)
	Orientation() vecmath.Rotation
	SetOrientation(vecmath.Rotation)
	AngularVelocity() vecmath.Vec
	SetAngularVelocity(vecmath.Vec)

	Force() vecmath.Vec
	Torque() vecmath.Vec
}

// Agent is the capability set the world relies on.
type Agent interface {
	Kinematic

	ID() ID
	SetID(ID)

	// ReceiveForce and ReceiveTorque accumulate into the current frame.
	ReceiveForce(vecmath.Vec)
	ReceiveTorque(vecmath.Vec)
	// QueueForce and QueueTorque store external contributions that are
	// applied exactly once, at the start of the next frame.
	QueueForce(vecmath.Vec)
	QueueTorque(vecmath.Vec)
	// ResetForces zeroes the frame accumulators.
	ResetForces()
	// ApplyExternal moves the queued contributions into the accumulators and
	// clears the queue.
	ApplyExternal()
	// UpdateStats refreshes derived per-frame quantities.
	UpdateStats()

	BoundingRadius() float64
	Dead() bool
}

// Behaver is implemented by agents with a per-frame behaviour. A non-nil
// returned agent with ok set is added to the world after the behaviour pass.
type Behaver[A any] interface {
	UpdateBehavior(dt float64) (spawn A, ok bool)
}
