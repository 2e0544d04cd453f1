package vecmath

// RayStatus qualifies a RayCast result.
type RayStatus uint8

const (
	RayHit      RayStatus = iota // plane ahead of the ray origin (l > 0)
	RayBehind                    // plane behind the ray origin (l < 0)
	RayParallel                  // ray parallel to the plane, no intersection
	RayOnPlane                   // ray origin lies on the plane (l == 0)
)

func (s RayStatus) String() string {
	switch s {
	case RayHit:
		return "hit"
	case RayBehind:
		return "behind"
	case RayParallel:
		return "parallel"
	case RayOnPlane:
		return "on_plane"
	}
	return "unknown"
}

// RayCast returns l such that p + l*r lies on the plane through o with normal
// n. When the ray is parallel to the plane l is 0 and the status is
// RayParallel, which is distinct from an origin lying on the plane.
func RayCast(o, n, p, r Vec) (float64, RayStatus) {
	nr := n.Dot(r)
	if nr == 0 {
		return 0, RayParallel
	}
	l := n.Dot(o.Sub(p)) / nr
	switch {
	case l > 0:
		return l, RayHit
	case l < 0:
		return l, RayBehind
	}
	return 0, RayOnPlane
}

// ProjectOnPlane projects p onto the plane through o with unit normal n.
func ProjectOnPlane(o, n, p Vec) Vec {
	return p.Sub(n.Scale(n.Dot(p.Sub(o))))
}

// SignedDistance returns the distance from p to the plane through o with unit
// normal n, positive on the side n points to.
func SignedDistance(o, n, p Vec) float64 {
	return n.Dot(p.Sub(o))
}

// ProjectOnSegment projects p onto the line through origin and b.
func ProjectOnSegment(origin, b, p Vec) Vec {
	a := b.Sub(origin)
	sq := a.SqLen()
	if sq == 0 {
		return origin
	}
	return origin.Add(a.Scale(a.Dot(p.Sub(origin)) / sq))
}

// ClosestOnSegment is ProjectOnSegment clamped to the [origin, b] segment.
func ClosestOnSegment(origin, b, p Vec) Vec {
	a := b.Sub(origin)
	sq := a.SqLen()
	if sq == 0 {
		return origin
	}
	t := a.Dot(p.Sub(origin)) / sq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return origin.Add(a.Scale(t))
}

// TriangleNormal returns the unit normal of triangle abc (counter-clockwise
// winding) and false for a degenerate triangle.
func TriangleNormal(a, b, c Vec) (Vec, bool) {
	return b.Sub(a).Cross(c.Sub(a)).Unit()
}

// PointInTriangle reports whether p, assumed to lie in the plane of abc, is
// inside the triangle (edges included).
func PointInTriangle(p, a, b, c Vec) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d02 := v0.Dot(v2)
	d11 := v1.Dot(v1)
	d12 := v1.Dot(v2)
	den := d00*d11 - d01*d01
	if den == 0 {
		return false
	}
	inv := 1 / den
	u := (d11*d02 - d01*d12) * inv
	v := (d00*d12 - d01*d02) * inv
	const eps = 1e-9
	return u >= -eps && v >= -eps && u+v <= 1+eps
}
