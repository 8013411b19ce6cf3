package worm

import (
	"math"

	"github.com/cancode/hyperworm/internal/vecmath"
)

// snapEpsilon is how close current must get to target before it snaps.
const snapEpsilon = 1e-4

// GrowthState describes where the visual length is heading.
type GrowthState int

const (
	GrowthStable GrowthState = iota
	GrowthGrowing
	GrowthShrinking
)

func (s GrowthState) String() string {
	switch s {
	case GrowthStable:
		return "stable"
	case GrowthGrowing:
		return "growing"
	case GrowthShrinking:
		return "shrinking"
	default:
		return "unknown"
	}
}

// Growth holds the authoritative target length and the smoothed current
// length that chases it.
type Growth struct {
	current float64
	target  float64
	min     float64
	max     float64
	rate    float64
}

// NewGrowth creates a stable controller at initial (clamped to [min, max]).
func NewGrowth(initial, min, max, rate float64) *Growth {
	g := &Growth{min: min, max: max, rate: rate}
	g.SetTargetLength(initial)
	g.current = g.target
	return g
}

// SetTargetLength sets the authoritative length, clamped to [min, max].
func (g *Growth) SetTargetLength(l float64) {
	if !vecmath.Finite(l) {
		return
	}
	g.target = vecmath.ClampF(l, g.min, g.max)
}

// Grow adds amount to the target length.
func (g *Growth) Grow(amount float64) {
	g.SetTargetLength(g.target + amount)
}

// Update damps current toward target over dt seconds.
func (g *Growth) Update(dt float64) {
	if g.current == g.target || !vecmath.Finite(dt) || dt <= 0 {
		return
	}
	g.current = vecmath.Damp(g.current, g.target, g.rate, dt)
	if math.Abs(g.target-g.current) < snapEpsilon {
		g.current = g.target
	}
}

// Settle jumps current to target. Used when a body is (re)spawned.
func (g *Growth) Settle() {
	g.current = g.target
}

func (g *Growth) Current() float64 { return g.current }
func (g *Growth) Target() float64  { return g.target }

// State reports whether the body is growing, shrinking or stable.
func (g *Growth) State() GrowthState {
	switch {
	case g.current < g.target:
		return GrowthGrowing
	case g.current > g.target:
		return GrowthShrinking
	default:
		return GrowthStable
	}
}
