package config

import (
	_ "embed"
)

//go:embed defaults/hyperworm.yaml
var defaultHyperWormYAML []byte

//go:embed defaults/hyperworm.schema.json
var hyperWormSchemaJSON string

// DefaultHyperWormConfig returns the built-in configuration. It matches
// defaults/hyperworm.yaml.
func DefaultHyperWormConfig() HyperWormConfig {
	return HyperWormConfig{
		Body: BodyConfig{
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
		},
		Movement: MovementConfig{
			BaseSpeed:    2.5,
			SpeedPerBite: 0.05,
			MaxSpeed:     8,
			SteerBlend:   0.12,
			TurnDegrees:  45,
		},
		Room: RoomConfig{
			BaseSize:      12,
			SizeStep:      2,
			MaxSize:       24,
			CampaignRooms: 10,
			MaxPillars:    8,
			PillarRadius:  0.6,
		},
		Food: FoodConfig{
			EatDistance:    0.5,
			BitesPerRoom:   15,
			SpawnClearance: 1.0,
		},
		Door: DoorConfig{
			EntryDistance: 1.2,
			AppearSeconds: 0.5,
			PulseRate:     4,
		},
		Intro: IntroConfig{
			Enabled:      true,
			HatchSeconds: 2.0,
		},
		Camera: CameraConfig{
			Follow: 0.08,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 100,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 0.6,
				ExtraPillars:    3,
			},
		},
	}
}
