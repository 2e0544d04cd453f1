package body

import "github.com/pthm-cable/morphogen/vecmath"

// Body is a solid sphere. It implements Agent and is meant to be embedded.
type Body struct {
	id ID

	pos    vecmath.Vec
	vel    vecmath.Vec
	orient vecmath.Rotation
	angVel vecmath.Vec

	force  vecmath.Vec
	torque vecmath.Vec

	queuedForce  vecmath.Vec
	queuedTorque vecmath.Vec

	mass   float64
	radius float64
	dead   bool

	// Previous-frame velocity, refreshed by UpdateStats.
	prevVel vecmath.Vec
	accel   vecmath.Vec
}

// New returns a body of the given mass and radius at pos.
func New(pos vecmath.Vec, mass, radius float64) Body {
	return Body{
		pos:    pos,
		orient: vecmath.Identity,
		mass:   mass,
		radius: radius,
	}
}

func (b *Body) ID() ID { return b.id }
func (b *Body) SetID(id ID) { b.id = id }
func (b *Body) Mass() float64 { return b.mass }

// SetMass changes the mass. It must stay positive.
func (b *Body) SetMass(m float64) { b.mass = m }

// MomentOfInertia of a solid sphere, 2/5 m r².
func (b *Body) MomentOfInertia() float64 {
	return 0.4 * b.mass * b.radius * b.radius
}

func (b *Body) BoundingRadius() float64 { return b.radius }
func (b *Body) SetRadius(r float64) { b.radius = r }
func (b *Body) Position() vecmath.Vec { return b.pos }
func (b *Body) SetPosition(p vecmath.Vec) { b.pos = p }
func (b *Body) Velocity() vecmath.Vec { return b.vel }
func (b *Body) SetVelocity(v vecmath.Vec) { b.vel = v }
func (b *Body) Orientation() vecmath.Rotation { return b.orient }
func (b *Body) SetOrientation(r vecmath.Rotation) { b.orient = r }
func (b *Body) AngularVelocity() vecmath.Vec { return b.angVel }
func (b *Body) SetAngularVelocity(w vecmath.Vec) { b.angVel = w }
func (b *Body) Force() vecmath.Vec { return b.force }
func (b *Body) Torque() vecmath.Vec { return b.torque }
func (b *Body) ReceiveForce(f vecmath.Vec) { b.force = b.force.Add(f) }
func (b *Body) ReceiveTorque(t vecmath.Vec) { b.torque = b.torque.Add(t) }
func (b *Body) QueueForce(f vecmath.Vec) { b.queuedForce = b.queuedForce.Add(f) }
func (b *Body) QueueTorque(t vecmath.Vec) { b.queuedTorque = b.queuedTorque.Add(t) }
func (b *Body) Acceleration() vecmath.Vec { return b.accel }
func (b *Body) Dead() bool { return b.dead }

// Kill flags the body for removal at the end of the current frame.
func (b *Body) Kill() { b.dead = true }

func (b *Body) ResetForces() {
	b.force = vecmath.Zero
	b.torque = vecmath.Zero
}

func (b *Body) ApplyExternal() {
	b.force = b.force.Add(b.queuedForce)
	b.torque = b.torque.Add(b.queuedTorque)
	b.queuedForce = vecmath.Zero
	b.queuedTorque = vecmath.Zero
}

// UpdateStats records the velocity change since the previous frame.
func (b *Body) UpdateStats() {
	b.accel = b.vel.Sub(b.prevVel)
	b.prevVel = b.vel
}
