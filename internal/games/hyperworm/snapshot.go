package hyperworm

import (
	"github.com/cancode/hyperworm/internal/vecmath"
)

// spineStride keeps every n-th spine point in snapshots.
const spineStride = 4

// Point is a position on the floor plane.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func planar(v vecmath.Vec3) Point {
	return Point{X: v.X, Z: v.Z}
}

// PillarSnapshot describes one obstacle.
type PillarSnapshot struct {
	Pos    Point   `json:"pos"`
	Radius float64 `json:"radius"`
}

// Snapshot captures the game state for determinism tests, replays and
// spectators. It shares no memory with the game.
type Snapshot struct {
	Tick      uint64 `json:"tick"`
	Mode      string `json:"mode"`
	Phase     Phase  `json:"phase"`
	Paused    bool   `json:"paused,omitempty"`
	Cause     string `json:"cause,omitempty"`
	Score     int    `json:"score"`
	HighScore int    `json:"high_score"`

	Room         int     `json:"room"`
	RoomSize     float64 `json:"room_size"`
	RoomBites    int     `json:"room_bites"`
	BitesPerRoom int     `json:"bites_per_room"`
	Speed        float64 `json:"speed"`
	DoorOpen     bool    `json:"door_open"`
	Door         Point   `json:"door"`

	Head         Point   `json:"head"`
	Heading      Point   `json:"heading"`
	Length       float64 `json:"length"`
	TargetLength float64 `json:"target_length"`
	Growth       string  `json:"growth"`
	Spine        []Point `json:"spine,omitempty"`

	Food    *Point           `json:"food,omitempty"`
	Pillars []PillarSnapshot `json:"pillars,omitempty"`
	Hatch   float64          `json:"hatch"` // intro progress in [0, 1]
}

// Snapshot returns the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:         g.tick,
		Mode:         string(g.mode),
		Phase:        g.phase,
		Paused:       g.paused,
		Cause:        g.cause,
		Score:        g.state.Bites,
		HighScore:    g.highScore,
		Room:         g.state.Room,
		RoomBites:    g.state.RoomBites,
		BitesPerRoom: g.state.BitesPerRoom,
		Speed:        g.state.Speed,
		DoorOpen:     g.state.DoorOpen,
		Head:         planar(g.egg),
	}
	if g.intro != nil {
		s.Hatch = g.intro.Progress()
	}
	if g.room != nil {
		s.RoomSize = g.room.Size
		s.Door = planar(g.room.DoorPos())
		for _, p := range g.room.Pillars {
			s.Pillars = append(s.Pillars, PillarSnapshot{Pos: planar(p.Pos), Radius: p.Radius})
		}
	}
	if g.hasFood {
		f := planar(g.food)
		s.Food = &f
	}
	if g.worm != nil {
		s.Head = planar(g.worm.Head())
		s.Heading = planar(g.worm.Forward())
		s.Length = g.worm.Length()
		s.TargetLength = g.worm.TargetLength()
		s.Growth = g.worm.GrowthState().String()
		spine := g.worm.Spine()
		for i := 0; i < len(spine); i += spineStride {
			s.Spine = append(s.Spine, planar(spine[i]))
		}
		if n := len(spine); n > 0 && (n-1)%spineStride != 0 {
			s.Spine = append(s.Spine, planar(spine[n-1]))
		}
	}
	return s
}

// Observe returns the snapshot for replay and spectator streams.
func (g *Game) Observe() any {
	return g.Snapshot()
}
