package worm

import "github.com/cancode/hyperworm/internal/vecmath"

// resetTailOffset is the distance between the two seed points after a reset.
const resetTailOffset = 0.1

// Spine is the worm's centreline: recent head positions, newest first.
// Its polyline length never exceeds the length budget passed to Push.
type Spine struct {
	points     []vecmath.Vec3
	minSpacing float64
}

// NewSpine creates a spine seeded at pos, trailing toward back.
func NewSpine(minSpacing float64, pos, back vecmath.Vec3) *Spine {
	s := &Spine{
		points:     make([]vecmath.Vec3, 0, 256),
		minSpacing: minSpacing,
	}
	s.Reset(pos, back)
	return s
}

// Reset reseeds the spine with exactly two points: pos and a point a short
// distance behind it along back.
func (s *Spine) Reset(pos, back vecmath.Vec3) {
	back = back.Normalize()
	if back == (vecmath.Vec3{}) {
		back = vecmath.V3(0, 0, 1)
	}
	s.points = append(s.points[:0], pos, pos.Add(back.Scale(resetTailOffset)))
}

// Push records a new head position if it moved at least minSpacing from the
// newest point, then trims the tail so the length stays within maxLen.
// Non-finite positions are ignored. Reports whether a point was added.
func (s *Spine) Push(head vecmath.Vec3, maxLen float64) bool {
	if !head.Finite() {
		return false
	}

	added := false
	if len(s.points) == 0 || head.DistSq(s.points[0]) >= s.minSpacing*s.minSpacing {
		s.points = append(s.points, vecmath.Vec3{})
		copy(s.points[1:], s.points)
		s.points[0] = head
		added = true
	}

	s.trim(maxLen)
	return added
}

// trim cuts the polyline at arc length maxLen. The cut lands between two
// recorded points, so an interpolated tail point is appended there.
func (s *Spine) trim(maxLen float64) {
	if !vecmath.Finite(maxLen) || maxLen <= 0 {
		return
	}

	acc := 0.0
	for i := 0; i < len(s.points)-1; i++ {
		d := s.points[i].Dist(s.points[i+1])
		if acc+d > maxLen {
			rem := maxLen - acc
			tail := s.points[i].Lerp(s.points[i+1], rem/d)
			s.points = s.points[:i+1]
			if rem > 1e-9 || len(s.points) < 2 {
				s.points = append(s.points, tail)
			}
			return
		}
		acc += d
	}
}

// Points returns the spine, head first. The slice is owned by the spine and
// is only valid until the next Push or Reset.
func (s *Spine) Points() []vecmath.Vec3 {
	return s.points
}

// Len returns the number of recorded points.
func (s *Spine) Len() int {
	return len(s.points)
}

// Head returns the newest point.
func (s *Spine) Head() vecmath.Vec3 {
	return s.points[0]
}

// Tail returns the oldest point.
func (s *Spine) Tail() vecmath.Vec3 {
	return s.points[len(s.points)-1]
}

// Length returns the polyline arc length.
func (s *Spine) Length() float64 {
	sum := 0.0
	for i := 0; i < len(s.points)-1; i++ {
		sum += s.points[i].Dist(s.points[i+1])
	}
	return sum
}

// Buildable reports whether a curve can be fitted through the spine.
func (s *Spine) Buildable() bool {
	return len(s.points) >= 2 && s.Length() > 1e-9
}
