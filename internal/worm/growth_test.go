package worm

import (
	"testing"

	"github.com/cancode/hyperworm/internal/vecmath"
)

func TestGrowthConvergesMonotonically(t *testing.T) {
	g := NewGrowth(2.2, 0.5, 30, 4)
	g.Grow(0.6)

	if g.State() != GrowthGrowing {
		t.Fatalf("State() = %v, expected growing", g.State())
	}

	prev := g.Current()
	for i := 0; i < 600; i++ {
		g.Update(1.0 / 60)
		cur := g.Current()
		if cur < prev {
			t.Fatalf("step %d: current decreased from %v to %v", i, prev, cur)
		}
		if cur > g.Target() {
			t.Fatalf("step %d: current %v overshot target %v", i, cur, g.Target())
		}
		prev = cur
	}
	if g.State() != GrowthStable {
		t.Errorf("State() = %v after 10s, expected stable", g.State())
	}
}

func TestGrowthClamp(t *testing.T) {
	tests := []struct {
		name     string
		set      float64
		expected float64
	}{
		{"within range", 5, 5},
		{"below min", 0.1, 0.5},
		{"above max", 99, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGrowth(2.2, 0.5, 30, 4)
			g.SetTargetLength(tc.set)
			if g.Target() != tc.expected {
				t.Errorf("Target() = %v, expected %v", g.Target(), tc.expected)
			}
		})
	}
}

func TestGrowthShrinks(t *testing.T) {
	g := NewGrowth(10, 0.5, 30, 4)
	g.SetTargetLength(3)
	if g.State() != GrowthShrinking {
		t.Fatalf("State() = %v, expected shrinking", g.State())
	}
	for i := 0; i < 600; i++ {
		g.Update(1.0 / 60)
		if g.Current() < g.Target() {
			t.Fatalf("current %v undershot target %v", g.Current(), g.Target())
		}
	}
	if g.Current() != 3 {
		t.Errorf("Current() = %v, expected 3", g.Current())
	}
}

func TestSpinePushSpacing(t *testing.T) {
	s := NewSpine(0.04, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1))

	if s.Push(vecmath.V3(0, 0, -0.01), 10) {
		t.Error("Push added a point closer than the spacing threshold")
	}
	if !s.Push(vecmath.V3(0, 0, -0.05), 10) {
		t.Error("Push rejected a point past the spacing threshold")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", s.Len())
	}
	if s.Head() != vecmath.V3(0, 0, -0.05) {
		t.Errorf("Head() = %v, expected newest point", s.Head())
	}
}

func TestSpineTrimInterpolatesTail(t *testing.T) {
	s := NewSpine(0.04, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1))
	for i := 1; i <= 50; i++ {
		s.Push(vecmath.V3(0, 0, -0.1*float64(i)), 100)
	}

	s.Push(vecmath.V3(0, 0, -5.1), 1.25)
	if got := s.Length(); got > 1.25+1e-9 || got < 1.25-1e-9 {
		t.Errorf("Length() = %v, expected 1.25", got)
	}
	if s.Tail().Dist(vecmath.V3(0, 0, -5.1+1.25)) > 1e-9 {
		t.Errorf("Tail() = %v, expected (0, 0, %v)", s.Tail(), -5.1+1.25)
	}
}

func TestSpineKeepsTwoPoints(t *testing.T) {
	s := NewSpine(0.04, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1))
	s.Push(vecmath.V3(0, 0, -3), 0.5)
	if s.Len() < 2 {
		t.Fatalf("Len() = %d, expected at least 2", s.Len())
	}
	if got := s.Length(); got > 0.5+1e-9 {
		t.Errorf("Length() = %v, expected <= 0.5", got)
	}
}
