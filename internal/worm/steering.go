package worm

import (
	"math"

	"github.com/cancode/hyperworm/internal/vecmath"
)

// Steering low-pass filters directional input into a unit heading on the
// XZ plane. The heading is never assigned from input directly; each Update
// moves it a fixed fraction of the way toward the desired direction.
type Steering struct {
	heading vecmath.Vec3
	desired vecmath.Vec3
	blend   float64
}

// NewSteering creates an integrator facing heading.
// A zero or non-finite heading defaults to -Z (screen up).
func NewSteering(heading vecmath.Vec3, blend float64) *Steering {
	h := flatten(heading)
	if h == (vecmath.Vec3{}) {
		h = vecmath.V3(0, 0, -1)
	}
	return &Steering{heading: h, desired: h, blend: blend}
}

// flatten projects v onto the floor plane and normalizes it.
func flatten(v vecmath.Vec3) vecmath.Vec3 {
	if !v.Finite() {
		return vecmath.Vec3{}
	}
	v.Y = 0
	return v.Normalize()
}

// SetDirection sets the desired direction from 2D input (x right, y up).
// Zero-length or non-finite input is ignored so the heading holds.
func (s *Steering) SetDirection(in vecmath.Vec2) {
	if !in.Finite() || in.Len() < 1e-9 {
		return
	}
	n := in.Normalize()
	s.desired = vecmath.V3(n.X, 0, -n.Y)
}

// Turn rotates the desired direction about +Y. Positive turns left as seen
// from above.
func (s *Steering) Turn(angle float64) {
	if !vecmath.Finite(angle) {
		return
	}
	s.desired = s.desired.RotateY(angle)
}

// Update blends the heading toward the desired direction. No step turns
// further than blend·π/2.
func (s *Steering) Update() {
	if s.heading == s.desired {
		return
	}
	maxTurn := s.blend * math.Pi / 2
	h := s.heading.Lerp(s.desired, s.blend).Normalize()
	if s.heading.Dot(s.desired) < -1+1e-9 || angleBetween(s.heading, h) > maxTurn {
		// A lerp between opposite vectors never leaves their line.
		sign := 1.0
		if s.heading.Cross(s.desired).Y < 0 {
			sign = -1
		}
		h = s.heading.RotateY(sign * maxTurn)
	}
	s.heading = h.Normalize()
}

// angleBetween returns the angle between two unit vectors.
func angleBetween(a, b vecmath.Vec3) float64 {
	return math.Acos(vecmath.ClampF(a.Dot(b), -1, 1))
}

// Heading returns the current unit forward direction.
func (s *Steering) Heading() vecmath.Vec3 {
	return s.heading
}

// Desired returns the direction the heading is converging on.
func (s *Steering) Desired() vecmath.Vec3 {
	return s.desired
}
