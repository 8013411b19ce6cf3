package hyperworm

import "github.com/cancode/hyperworm/internal/vecmath"

// Camera follows a target on the floor plane with a fixed per-tick lerp.
type Camera struct {
	Pos     vecmath.Vec3 // look-at point
	Forward vecmath.Vec3 // last known heading of the target
	follow  float64
}

// NewCamera creates a camera that closes follow of the gap each tick.
func NewCamera(follow float64) Camera {
	return Camera{follow: vecmath.ClampF(follow, 0, 1), Forward: vecmath.V3(0, 0, 1)}
}

// Snap moves the camera onto target immediately.
func (c *Camera) Snap(target vecmath.Vec3) {
	c.Pos = vecmath.V3(target.X, 0, target.Z)
}

// Update eases toward target and keeps the look-at point within limit of
// the room centre on both axes.
func (c *Camera) Update(target, forward vecmath.Vec3, limit float64) {
	goal := vecmath.V3(target.X, 0, target.Z)
	c.Pos = c.Pos.Lerp(goal, c.follow)
	if limit >= 0 {
		c.Pos.X = vecmath.ClampF(c.Pos.X, -limit, limit)
		c.Pos.Z = vecmath.ClampF(c.Pos.Z, -limit, limit)
	}
	if forward.Finite() && forward.Len() > 0 {
		c.Forward = forward
	}
}
