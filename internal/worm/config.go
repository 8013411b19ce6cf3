// Package worm implements the continuous worm body: a spine of recent head
// positions, a smoothly growing length, a low-pass filtered heading, and a
// tapered tube mesh rebuilt from the spine every update.
//
// The package is pure simulation. It has no knowledge of rooms, food or
// score; the game feeds it growth events and reset requests.
package worm

// Config enumerates every tunable of the worm body.
// Zero fields are replaced by the matching DefaultConfig value.
type Config struct {
	InitialLength float64 // target length at spawn
	MinLength     float64 // lower clamp for the target length
	MaxLength     float64 // upper clamp for the target length
	GrowRate      float64 // exponential damping rate of current toward target (1/s)
	GrowAmount    float64 // default Grow amount for a food pickup

	BodyRadius      float64 // tube radius at the head
	TailRadius      float64 // tube radius at the tail tip
	RadialSegments  int     // vertices around each cross-section
	TubularSegments int     // cross-sections along the body
	CurveTension    float64 // Catmull-Rom tension

	MinPointDistance float64 // spine spacing threshold
	SteerBlend       float64 // per-step heading lerp factor in (0, 1)
}

// DefaultConfig returns the worm parameters used by the game.
func DefaultConfig() Config {
	return Config{
		InitialLength:    2.2,
		MinLength:        0.5,
		MaxLength:        30,
		GrowRate:         4.0,
		GrowAmount:       0.8,
		BodyRadius:       0.28,
		TailRadius:       0.10,
		RadialSegments:   12,
		TubularSegments:  72,
		CurveTension:     0.4,
		MinPointDistance: 0.04,
		SteerBlend:       0.12,
	}
}

// withDefaults fills unset or invalid fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.MaxLength < c.MinLength {
		c.MaxLength = d.MaxLength
		if c.MaxLength < c.MinLength {
			c.MaxLength = c.MinLength
		}
	}
	if c.InitialLength <= 0 {
		c.InitialLength = d.InitialLength
	}
	if c.GrowRate <= 0 {
		c.GrowRate = d.GrowRate
	}
	if c.GrowAmount <= 0 {
		c.GrowAmount = d.GrowAmount
	}
	if c.BodyRadius <= 0 {
		c.BodyRadius = d.BodyRadius
	}
	if c.TailRadius <= 0 {
		c.TailRadius = d.TailRadius
	}
	if c.RadialSegments < 3 {
		c.RadialSegments = d.RadialSegments
	}
	if c.TubularSegments < 1 {
		c.TubularSegments = d.TubularSegments
	}
	if c.CurveTension <= 0 {
		c.CurveTension = d.CurveTension
	}
	if c.MinPointDistance <= 0 {
		c.MinPointDistance = d.MinPointDistance
	}
	if c.SteerBlend <= 0 || c.SteerBlend >= 1 {
		c.SteerBlend = d.SteerBlend
	}
	return c
}
