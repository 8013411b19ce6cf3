// Package config loads the game's YAML configuration and manages difficulty
// progression.
package config

// HyperWormConfig contains every tunable of the game.
type HyperWormConfig struct {
	Body       BodyConfig       `yaml:"body"`
	Movement   MovementConfig   `yaml:"movement"`
	Room       RoomConfig       `yaml:"room"`
	Food       FoodConfig       `yaml:"food"`
	Door       DoorConfig       `yaml:"door"`
	Intro      IntroConfig      `yaml:"intro"`
	Camera     CameraConfig     `yaml:"camera"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BodyConfig defines the worm body geometry and growth.
type BodyConfig struct {
	InitialLength    float64 `yaml:"initial_length"`
	MinLength        float64 `yaml:"min_length"`
	MaxLength        float64 `yaml:"max_length"`
	GrowRate         float64 `yaml:"grow_rate"`   // 1/s
	GrowAmount       float64 `yaml:"grow_amount"` // length added per bite
	BodyRadius       float64 `yaml:"body_radius"`
	TailRadius       float64 `yaml:"tail_radius"`
	RadialSegments   int     `yaml:"radial_segments"`
	TubularSegments  int     `yaml:"tubular_segments"`
	CurveTension     float64 `yaml:"curve_tension"`
	MinPointDistance float64 `yaml:"min_point_distance"`
}

// MovementConfig defines speed and steering.
type MovementConfig struct {
	BaseSpeed    float64 `yaml:"base_speed"`     // units/s
	SpeedPerBite float64 `yaml:"speed_per_bite"` // added per bite
	MaxSpeed     float64 `yaml:"max_speed"`
	SteerBlend   float64 `yaml:"steer_blend"`
	TurnDegrees  float64 `yaml:"turn_degrees"` // relative turn per key press
}

// RoomConfig defines procedural room generation.
type RoomConfig struct {
	BaseSize      float64 `yaml:"base_size"`
	SizeStep      float64 `yaml:"size_step"`
	MaxSize       float64 `yaml:"max_size"`
	CampaignRooms int     `yaml:"campaign_rooms"`
	MaxPillars    int     `yaml:"max_pillars"`
	PillarRadius  float64 `yaml:"pillar_radius"`
}

// FoodConfig defines food placement and eating.
type FoodConfig struct {
	EatDistance    float64 `yaml:"eat_distance"`
	BitesPerRoom   int     `yaml:"bites_per_room"`
	SpawnClearance float64 `yaml:"spawn_clearance"`
}

// DoorConfig defines the exit door.
type DoorConfig struct {
	EntryDistance float64 `yaml:"entry_distance"`
	AppearSeconds float64 `yaml:"appear_seconds"`
	PulseRate     float64 `yaml:"pulse_rate"` // rad/s
}

// IntroConfig defines the egg hatch intro.
type IntroConfig struct {
	Enabled      bool    `yaml:"enabled"`
	HatchSeconds float64 `yaml:"hatch_seconds"`
}

// CameraConfig defines the follow camera.
type CameraConfig struct {
	Follow float64 `yaml:"follow"` // per-tick lerp factor
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0 = easy, 1 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over a run.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time" or "none"
	MaxAt int    `yaml:"max_at"` // score or ticks at which difficulty peaks
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // added to speed at max difficulty
	ExtraPillars    int     `yaml:"extra_pillars"`    // pillars added per room at max difficulty
}

// DifficultyPreset is a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists the accepted preset names.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset reports whether the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(name string) (DifficultyPreset, bool) {
	if name == "" {
		return DifficultyNormal, true
	}
	for _, p := range Presets() {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}
