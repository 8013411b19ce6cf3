package worm

import (
	"math"
	"testing"

	"github.com/cancode/hyperworm/internal/vecmath"
)

const step = 1.0 / 60

func newTestWorm() *Worm {
	return New(DefaultConfig(), vecmath.V3(0, 0.28, 0), vecmath.V3(0, 0, -1))
}

func TestGrowScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialLength = 2.2
	cfg.BodyRadius = 0.28
	cfg.TailRadius = 0.10
	w := New(cfg, vecmath.V3(0, 0.28, 0), vecmath.V3(0, 0, -1))

	if w.Length() != 2.2 {
		t.Fatalf("initial Length() = %v, expected 2.2", w.Length())
	}

	w.Grow(0.6)
	if math.Abs(w.TargetLength()-2.8) > 1e-12 {
		t.Fatalf("TargetLength() = %v, expected 2.8", w.TargetLength())
	}

	for i := 0; i < 5*60; i++ {
		w.Advance(step, 2.5)
	}

	if math.Abs(w.Length()-2.8) > 1e-3 {
		t.Errorf("Length() after 5s = %v, expected ~2.8", w.Length())
	}
	if w.GrowthState() != GrowthStable {
		t.Errorf("GrowthState() = %v, expected stable", w.GrowthState())
	}
}

func TestMeshLengthWithinCurrentLength(t *testing.T) {
	w := newTestWorm()
	w.Grow(3)

	const tolerance = 0.05
	for i := 0; i < 20*60; i++ {
		// Weave left and right so the spine curves.
		angle := math.Sin(float64(i) / 20)
		w.SetDirection(vecmath.Vec2{X: math.Sin(angle), Y: math.Cos(angle)})
		w.Advance(step, 3)

		if got := w.spine.Length(); got > w.Length()+1e-9 {
			t.Fatalf("frame %d: spine length %v exceeds current length %v", i, got, w.Length())
		}
		m := w.Mesh()
		if m == nil {
			t.Fatalf("frame %d: nil mesh", i)
		}
		if m.Length > w.Length()*(1+tolerance)+0.02 {
			t.Fatalf("frame %d: mesh length %v exceeds current length %v", i, m.Length, w.Length())
		}
	}
}

func TestHeadingStaysUnit(t *testing.T) {
	w := newTestWorm()
	inputs := []vecmath.Vec2{
		{X: 1, Y: 0}, {X: 0, Y: -1}, {X: -3, Y: 4}, {X: 0, Y: 1}, {X: 0.001, Y: -0.002},
	}
	for i := 0; i < 600; i++ {
		w.SetDirection(inputs[(i/40)%len(inputs)])
		w.Advance(step, 2)
		if l := w.Forward().Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("step %d: heading length %v, expected 1", i, l)
		}
	}
}

func TestZeroInputHoldsHeading(t *testing.T) {
	w := newTestWorm()

	w.SetDirection(vecmath.Vec2{X: 1, Y: 0})
	for i := 0; i < 10; i++ {
		w.Advance(step, 2)
	}
	// Let the turn settle, then feed zero input.
	for i := 0; i < 200; i++ {
		w.Advance(step, 2)
	}
	held := w.Forward()

	for i := 0; i < 60; i++ {
		w.SetDirection(vecmath.Vec2{})
		w.Advance(step, 2)
	}
	if d := w.Forward().Dist(held); d > 1e-6 {
		t.Errorf("heading drifted by %v under zero input", d)
	}
}

func TestNoInstantReversal(t *testing.T) {
	w := newTestWorm()
	before := w.Forward()

	w.SetDirection(vecmath.Vec2{X: 0, Y: -1}) // exact opposite of -Z heading
	w.Advance(step, 2)

	after := w.Forward()
	if after.Dot(before) < 0.5 {
		t.Errorf("heading turned too far in one step: before %v after %v", before, after)
	}
	if after == before {
		t.Error("heading did not start turning toward the reversed input")
	}

	for i := 0; i < 300; i++ {
		w.Advance(step, 2)
	}
	if d := w.Forward().Dist(vecmath.V3(0, 0, 1)); d > 1e-3 {
		t.Errorf("Forward() = %v after reversal, expected (0, 0, 1)", w.Forward())
	}
}

func TestTurnRateBounded(t *testing.T) {
	tests := []struct {
		blend float64
		turns bool // the first step visibly turns
	}{
		{0.12, false},
		{0.5, true},
		{0.6, true},
		{0.9, true},
	}

	for _, tc := range tests {
		s := NewSteering(vecmath.V3(0, 0, -1), tc.blend)
		s.SetDirection(vecmath.Vec2{X: 1e-3, Y: -1}) // almost straight back
		before := s.Heading()
		s.Update()

		turned := angleBetween(before, s.Heading())
		if limit := tc.blend * math.Pi / 2; turned > limit+1e-9 {
			t.Errorf("blend %v: turned %.1f° in one step, limit %.1f°", tc.blend, turned*180/math.Pi, limit*180/math.Pi)
		}
		if tc.turns && turned < 1e-3 {
			t.Errorf("blend %v: heading did not turn", tc.blend)
		}
		if l := s.Heading().Len(); math.Abs(l-1) > 1e-9 {
			t.Errorf("blend %v: |heading| = %v", tc.blend, l)
		}

		for i := 0; i < 1000; i++ {
			s.Update()
		}
		if d := s.Heading().Dist(s.Desired()); d > 1e-3 {
			t.Errorf("blend %v: heading %v never reached %v", tc.blend, s.Heading(), s.Desired())
		}
	}
}

func TestResetSeedsTwoPoints(t *testing.T) {
	w := newTestWorm()
	w.Grow(1)
	for i := 0; i < 120; i++ {
		w.Advance(step, 3)
	}

	pos := vecmath.V3(4, 0.28, -2)
	w.Reset(pos)

	spine := w.Spine()
	if len(spine) != 2 {
		t.Fatalf("spine has %d points after reset, expected 2", len(spine))
	}
	if spine[0] != pos {
		t.Errorf("spine[0] = %v, expected %v", spine[0], pos)
	}
	if d := spine[1].Dist(pos); d > 0.1+1e-9 {
		t.Errorf("spine[1] is %v from reset position, expected <= 0.1", d)
	}
	if w.Length() != w.TargetLength() {
		t.Errorf("Length() = %v after reset, expected target %v", w.Length(), w.TargetLength())
	}
	if w.Head() != pos {
		t.Errorf("Head() = %v, expected %v", w.Head(), pos)
	}
}

func TestNonFiniteInputRejected(t *testing.T) {
	w := newTestWorm()
	for i := 0; i < 30; i++ {
		w.Advance(step, 2)
	}
	head := w.Head()
	heading := w.Forward()
	length := w.Length()

	w.Update(vecmath.V3(math.NaN(), 0, 0), step)
	w.SetDirection(vecmath.Vec2{X: math.Inf(1), Y: 0})
	w.Advance(math.NaN(), 2)
	w.Turn(math.NaN())
	w.SetTargetLength(math.Inf(1))

	if !w.Head().Finite() || w.Head() != head {
		t.Errorf("head changed to %v, expected %v", w.Head(), head)
	}
	if w.Forward().Dist(heading) > 1e-9 {
		t.Errorf("heading changed to %v, expected %v", w.Forward(), heading)
	}
	if w.Length() != length {
		t.Errorf("length changed to %v, expected %v", w.Length(), length)
	}
	for i, p := range w.Spine() {
		if !p.Finite() {
			t.Fatalf("spine[%d] = %v is not finite", i, p)
		}
	}
	for i, p := range w.Mesh().Positions {
		if !p.Finite() {
			t.Fatalf("mesh position %d = %v is not finite", i, p)
		}
	}
}

func TestMeshReleasedOnRebuild(t *testing.T) {
	w := newTestWorm()
	var seen []*Mesh
	for i := 0; i < 120; i++ {
		w.Advance(step, 2)
		seen = append(seen, w.Mesh())
	}

	if live := w.LiveMeshes(); live != 1 {
		t.Errorf("LiveMeshes() = %d, expected 1", live)
	}
	current := w.Mesh()
	for i, m := range seen {
		if m == current {
			continue
		}
		if !m.Released() {
			t.Fatalf("mesh from frame %d was not released", i)
		}
	}

	w.Release()
	if live := w.LiveMeshes(); live != 0 {
		t.Errorf("LiveMeshes() after Release = %d, expected 0", live)
	}
	if !current.Released() {
		t.Error("final mesh not released by Worm.Release")
	}
}

func TestTurnRelative(t *testing.T) {
	w := newTestWorm()
	w.Turn(math.Pi / 2) // left of -Z is -X
	for i := 0; i < 300; i++ {
		w.Advance(step, 1)
	}
	if d := w.Forward().Dist(vecmath.V3(-1, 0, 0)); d > 1e-3 {
		t.Errorf("Forward() = %v, expected (-1, 0, 0)", w.Forward())
	}
}
