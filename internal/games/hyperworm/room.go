package hyperworm

import (
	"math"
	"math/rand"

	"github.com/cancode/hyperworm/internal/config"
	"github.com/cancode/hyperworm/internal/vecmath"
)

// Layout constants in world units.
const (
	doorInset     = 0.15 // door plane distance from the +Z wall
	doorHalfWidth = 0.9
	spawnInset    = 1.5 // spawn distance from the -Z wall
	laneHalfWidth = 1.5 // pillar-free corridor from spawn to door along x = 0
	pillarGap     = 1.0 // minimum clearance between pillars
)

// Pillar is a cylindrical obstacle.
type Pillar struct {
	Pos    vecmath.Vec3
	Radius float64
}

// Room is one procedurally generated arena centred on the origin. The floor
// is the square [-Half, Half] on X and Z.
type Room struct {
	Number  int
	Size    float64
	Half    float64
	Pillars []Pillar
}

// RoomSize returns the side length of room n (1-based).
func RoomSize(n int, cfg config.RoomConfig) float64 {
	size := cfg.BaseSize + cfg.SizeStep*float64(n-1)
	if cfg.MaxSize > 0 {
		size = math.Min(size, cfg.MaxSize)
	}
	return size
}

// NewRoom generates room n with up to pillars obstacles. Pillars keep clear
// of the spawn point, the door and the corridor between them; placement
// gives up after a bounded number of attempts, so crowded rooms may get
// fewer pillars than requested.
func NewRoom(n int, cfg config.RoomConfig, pillars int, rng *rand.Rand) *Room {
	size := RoomSize(n, cfg)
	r := &Room{Number: n, Size: size, Half: size / 2}

	radius := cfg.PillarRadius
	limit := r.Half - radius - 1
	if limit <= laneHalfWidth+radius {
		return r
	}

	for attempt := 0; len(r.Pillars) < pillars && attempt < pillars*30; attempt++ {
		p := vecmath.V3(
			(rng.Float64()*2-1)*limit,
			0,
			(rng.Float64()*2-1)*limit,
		)
		if r.pillarFits(p, radius) {
			r.Pillars = append(r.Pillars, Pillar{Pos: p, Radius: radius})
		}
	}
	return r
}

func (r *Room) pillarFits(p vecmath.Vec3, radius float64) bool {
	if math.Abs(p.X) < laneHalfWidth+radius {
		return false
	}
	if p.PlanarDist(r.SpawnPoint(0)) < 3+radius || p.PlanarDist(r.DoorPos()) < 3+radius {
		return false
	}
	for _, o := range r.Pillars {
		if p.PlanarDist(o.Pos) < radius+o.Radius+pillarGap {
			return false
		}
	}
	return true
}

// SpawnPoint is where the worm enters the room, height y above the floor.
func (r *Room) SpawnPoint(y float64) vecmath.Vec3 {
	return vecmath.V3(0, y, -r.Half+spawnInset)
}

// DoorPos is the floor-level centre of the exit door on the +Z wall.
func (r *Room) DoorPos() vecmath.Vec3 {
	return vecmath.V3(0, 0, r.Half-doorInset)
}

// LaneEnd returns the point on the pillar-free x = 0 lane that keeps
// clearance from the end walls, at whichever end is farther from away.
func (r *Room) LaneEnd(away vecmath.Vec3, clearance float64) vecmath.Vec3 {
	z := math.Max(0, r.Half-clearance-0.1)
	p := vecmath.V3(0, 0, z)
	if q := vecmath.V3(0, 0, -z); q.PlanarDist(away) > p.PlanarDist(away) {
		return q
	}
	return p
}

// Inside reports whether a sphere of radius at p is clear of the walls.
func (r *Room) Inside(p vecmath.Vec3, radius float64) bool {
	lim := r.Half - radius
	return p.X > -lim && p.X < lim && p.Z > -lim && p.Z < lim
}

// HitPillar reports whether a sphere of radius at p touches a pillar.
func (r *Room) HitPillar(p vecmath.Vec3, radius float64) bool {
	for _, pl := range r.Pillars {
		if p.PlanarDist(pl.Pos) < pl.Radius+radius {
			return true
		}
	}
	return false
}

// Clear reports whether p is at least clearance away from walls and pillars.
func (r *Room) Clear(p vecmath.Vec3, clearance float64) bool {
	return r.Inside(p, clearance) && !r.HitPillar(p, clearance)
}
