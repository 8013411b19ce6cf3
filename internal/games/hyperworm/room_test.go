package hyperworm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cancode/hyperworm/internal/config"
	"github.com/cancode/hyperworm/internal/vecmath"
)

func TestRoomSize(t *testing.T) {
	cfg := config.DefaultHyperWormConfig().Room

	tests := []struct {
		room     int
		expected float64
	}{
		{1, 12},
		{2, 14},
		{4, 18},
		{7, 24},
		{8, 24},
		{50, 24},
	}

	for _, tc := range tests {
		if got := RoomSize(tc.room, cfg); got != tc.expected {
			t.Errorf("RoomSize(%d) = %v, expected %v", tc.room, got, tc.expected)
		}
	}
}

func TestPillarPlacement(t *testing.T) {
	cfg := config.DefaultHyperWormConfig().Room

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := NewRoom(5, cfg, cfg.MaxPillars, rng)

		if len(r.Pillars) > cfg.MaxPillars {
			t.Fatalf("seed %d: %d pillars, expected at most %d", seed, len(r.Pillars), cfg.MaxPillars)
		}
		for i, p := range r.Pillars {
			if !r.Inside(p.Pos, p.Radius) {
				t.Errorf("seed %d: pillar %d at %v crosses a wall", seed, i, p.Pos)
			}
			if math.Abs(p.Pos.X) < laneHalfWidth+p.Radius {
				t.Errorf("seed %d: pillar %d at %v blocks the centre lane", seed, i, p.Pos)
			}
			if p.Pos.PlanarDist(r.SpawnPoint(0)) < 3 || p.Pos.PlanarDist(r.DoorPos()) < 3 {
				t.Errorf("seed %d: pillar %d at %v crowds the spawn or door", seed, i, p.Pos)
			}
			for j, o := range r.Pillars[:i] {
				if p.Pos.PlanarDist(o.Pos) < p.Radius+o.Radius+pillarGap {
					t.Errorf("seed %d: pillars %d and %d overlap", seed, j, i)
				}
			}
		}
	}
}

func TestPillarsAreSeeded(t *testing.T) {
	cfg := config.DefaultHyperWormConfig().Room
	a := NewRoom(3, cfg, 5, rand.New(rand.NewSource(9)))
	b := NewRoom(3, cfg, 5, rand.New(rand.NewSource(9)))

	if len(a.Pillars) != len(b.Pillars) {
		t.Fatalf("pillar counts differ: %d vs %d", len(a.Pillars), len(b.Pillars))
	}
	for i := range a.Pillars {
		if a.Pillars[i] != b.Pillars[i] {
			t.Errorf("pillar %d differs: %v vs %v", i, a.Pillars[i], b.Pillars[i])
		}
	}
}

func TestRoomCollisions(t *testing.T) {
	r := &Room{Size: 12, Half: 6, Pillars: []Pillar{{Pos: vecmath.V3(3, 0, 0), Radius: 0.5}}}

	tests := []struct {
		name   string
		p      vecmath.Vec3
		inside bool
		pillar bool
	}{
		{"centre", vecmath.V3(0, 0, 0), true, false},
		{"near wall", vecmath.V3(5.5, 0, 0), true, false},
		{"touching wall", vecmath.V3(5.8, 0, 0), false, false},
		{"past wall", vecmath.V3(0, 0, -7), false, false},
		{"touching pillar", vecmath.V3(3, 0, 0.6), true, true},
		{"beside pillar", vecmath.V3(3, 0, 1.0), true, false},
		{"height ignored", vecmath.V3(3, 5, 0.6), true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Inside(tc.p, 0.28); got != tc.inside {
				t.Errorf("Inside() = %v, expected %v", got, tc.inside)
			}
			if got := r.HitPillar(tc.p, 0.28); got != tc.pillar {
				t.Errorf("HitPillar() = %v, expected %v", got, tc.pillar)
			}
		})
	}
}

func TestDoorAndSpawnPositions(t *testing.T) {
	r := NewRoom(1, config.DefaultHyperWormConfig().Room, 0, rand.New(rand.NewSource(1)))

	if got := r.SpawnPoint(0.28); got != vecmath.V3(0, 0.28, -4.5) {
		t.Errorf("SpawnPoint() = %v", got)
	}
	if got := r.DoorPos(); got.Dist(vecmath.V3(0, 0, 5.85)) > 1e-12 {
		t.Errorf("DoorPos() = %v", got)
	}
}

func TestLaneEnd(t *testing.T) {
	cfg := config.DefaultHyperWormConfig().Room
	r := NewRoom(5, cfg, 8, rand.New(rand.NewSource(3)))
	if len(r.Pillars) == 0 {
		t.Fatal("room has no pillars")
	}

	tests := []struct {
		name     string
		away     vecmath.Vec3
		northern bool
	}{
		{"head at spawn", r.SpawnPoint(0), true},
		{"head at door", r.DoorPos(), false},
	}
	for _, tc := range tests {
		p := r.LaneEnd(tc.away, 1)
		if (p.Z > 0) != tc.northern {
			t.Errorf("%s: LaneEnd() = %v, expected the far end", tc.name, p)
		}
		if p.X != 0 || !r.Clear(p, 1) {
			t.Errorf("%s: LaneEnd() = %v is not clear", tc.name, p)
		}
	}
}

func TestAnimationLifecycle(t *testing.T) {
	a := NewAnimation(0.5)
	if a.State() != AnimIdle || a.Progress() != 0 {
		t.Fatalf("new animation state = %v progress = %v", a.State(), a.Progress())
	}
	if a.Advance(0.1) {
		t.Error("idle animation advanced")
	}

	a.Start()
	if a.Advance(0.25) {
		t.Error("finished early")
	}
	if got := a.Progress(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Progress() = %v, expected 0.5", got)
	}
	if !a.Advance(0.3) {
		t.Error("Advance() did not report completion")
	}
	if !a.Done() || a.Progress() != 1 {
		t.Errorf("state = %v progress = %v after finishing", a.State(), a.Progress())
	}
	if a.Advance(0.1) {
		t.Error("finished twice")
	}
}

func TestAnimationCancel(t *testing.T) {
	a := NewAnimation(2)
	a.Start()
	a.Advance(0.5)
	a.Cancel()

	if a.State() != AnimCancelled || !a.Done() || a.Running() {
		t.Errorf("state = %v after Cancel", a.State())
	}
	if a.Progress() != 1 {
		t.Errorf("Progress() = %v, expected 1", a.Progress())
	}

	done := NewAnimation(0.1)
	done.Start()
	done.Advance(1)
	done.Cancel()
	if done.State() != AnimDone {
		t.Errorf("Cancel changed a finished animation to %v", done.State())
	}
}

func TestAnimationZeroDuration(t *testing.T) {
	a := NewAnimation(0)
	a.Start()
	if !a.Done() || a.Progress() != 1 {
		t.Errorf("zero-length animation state = %v", a.State())
	}
}

func TestCameraFollow(t *testing.T) {
	c := NewCamera(0.1)
	c.Snap(vecmath.V3(0, 3, 0))
	if c.Pos != (vecmath.Vec3{}) {
		t.Fatalf("Snap() kept height: %v", c.Pos)
	}

	c.Update(vecmath.V3(5, 0, 0), vecmath.V3(1, 0, 0), 10)
	if math.Abs(c.Pos.X-0.5) > 1e-12 {
		t.Errorf("Pos.X = %v after one update, expected 0.5", c.Pos.X)
	}
	if c.Forward != vecmath.V3(1, 0, 0) {
		t.Errorf("Forward = %v", c.Forward)
	}

	for i := 0; i < 500; i++ {
		c.Update(vecmath.V3(20, 0, -20), vecmath.Vec3{}, 6)
	}
	if c.Pos.X != 6 || c.Pos.Z != -6 {
		t.Errorf("Pos = %v, expected clamped to (6, -6)", c.Pos)
	}
	if c.Forward != vecmath.V3(1, 0, 0) {
		t.Errorf("zero forward overwrote the heading: %v", c.Forward)
	}
}
