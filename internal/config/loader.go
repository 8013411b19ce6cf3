package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "hyperworm.yaml"

// Load loads the game configuration.
// Search order: customPath -> ~/.hyperworm/configs/hyperworm.yaml ->
// ./configs/hyperworm.yaml -> embedded default.
//
// Files are layered on top of the defaults, so a file only needs the keys it
// changes. An explicit customPath that is missing or invalid is an error;
// a broken file found by the search is skipped.
func Load(customPath string) (HyperWormConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultHyperWormConfig(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return DefaultHyperWormConfig(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(configFile), filepath.Join("configs", configFile)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	return parseDefault(), nil
}

// parse validates data and decodes it over the defaults.
func parse(data []byte) (HyperWormConfig, error) {
	if err := Validate(data); err != nil {
		return HyperWormConfig{}, err
	}
	cfg := DefaultHyperWormConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HyperWormConfig{}, err
	}
	return cfg, nil
}

func parseDefault() HyperWormConfig {
	cfg := DefaultHyperWormConfig()
	if err := yaml.Unmarshal(defaultHyperWormYAML, &cfg); err != nil {
		return DefaultHyperWormConfig()
	}
	return cfg
}

// userConfigPath returns the per-user config file, or "" without a home dir.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hyperworm", "configs", filename)
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultHyperWormYAML
}

// ApplyPreset adjusts cfg for a difficulty preset.
func ApplyPreset(cfg *HyperWormConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	switch preset {
	case DifficultyEasy:
		cfg.Movement.BaseSpeed = 2.0
		cfg.Food.EatDistance = 0.6
	case DifficultyHard:
		cfg.Movement.BaseSpeed = 3.0
		cfg.Door.EntryDistance = 1.0
	}
}
