package integrator

import (
	"math"
	"testing"

	"github.com/pthm-cable/morphogen/body"
	"github.com/pthm-cable/morphogen/vecmath"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLinearMotion(t *testing.T) {
	const (
		dt    = 0.01
		steps = 100
		mass  = 2.0
	)
	force := vecmath.V(4, 0, 0) // a = 2

	tests := []struct {
		name  string
		integ Integrator
		// x after n steps, in units of a*dt^2
		posFactor float64
	}{
		{"euler", Euler{}, steps * (steps + 1) / 2},
		{"explicit", Explicit{}, steps * (steps - 1) / 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := body.New(vecmath.Zero, mass, 1)
			for i := 0; i < steps; i++ {
				b.ResetForces()
				b.ReceiveForce(force)
				tc.integ.Integrate(&b, dt)
			}
			if got, want := b.Velocity().X, 2*steps*dt; !approx(got, want) {
				t.Errorf("vx = %v, want %v", got, want)
			}
			if got, want := b.Position().X, 2*tc.posFactor*dt*dt; !approx(got, want) {
				t.Errorf("x = %v, want %v", got, want)
			}
			if b.Position().Y != 0 || b.Position().Z != 0 {
				t.Errorf("off-axis drift: %v", b.Position())
			}
		})
	}
}

func TestAngularMotion(t *testing.T) {
	b := body.New(vecmath.Zero, 1, 1)
	torque := vecmath.V(0, 0, 0.4) // I = 0.4, so alpha = 1 rad/s² around Z
	const dt = 0.01
	for i := 0; i < 10; i++ {
		b.ResetForces()
		b.ReceiveTorque(torque)
		Euler{}.Integrate(&b, dt)
	}
	if got := b.AngularVelocity().Z; !approx(got, 0.1) {
		t.Errorf("wz = %v, want 0.1", got)
	}
	r := b.Orientation()
	// sum of k*dt*dt for k = 1..10
	want := 55 * dt * dt
	if !approx(r.Theta, want) {
		t.Errorf("theta = %v, want %v", r.Theta, want)
	}
	if !approx(math.Abs(r.N.Z), 1) {
		t.Errorf("axis = %v, want Z", r.N)
	}
}

func TestNoForceNoMotion(t *testing.T) {
	b := body.New(vecmath.V(1, 2, 3), 1, 1)
	Euler{}.Integrate(&b, 0.1)
	if b.Position() != vecmath.V(1, 2, 3) || b.Orientation() != vecmath.Identity {
		t.Errorf("body moved without force: %v %v", b.Position(), b.Orientation())
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "euler", "explicit"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName("verlet"); ok {
		t.Error("ByName(verlet) should fail")
	}
}
