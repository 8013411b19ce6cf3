package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchCode(t *testing.T) {
	var fromYAML HyperWormConfig
	if err := yaml.Unmarshal(DefaultYAML(), &fromYAML); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}
	if !reflect.DeepEqual(fromYAML, DefaultHyperWormConfig()) {
		t.Errorf("embedded YAML = %+v\nexpected %+v", fromYAML, DefaultHyperWormConfig())
	}
	if err := Validate(DefaultYAML()); err != nil {
		t.Errorf("embedded YAML fails its own schema: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"empty", "", true},
		{"partial override", "movement:\n  base_speed: 3.5\n", true},
		{"unknown section", "lighting:\n  ambient: 1\n", false},
		{"unknown key", "body:\n  radius: 1\n", false},
		{"wrong type", "food:\n  bites_per_room: many\n", false},
		{"too few radial segments", "body:\n  radial_segments: 2\n", false},
		{"bad progression type", "difficulty:\n  progression:\n    type: lives\n", false},
		{"steer blend out of range", "movement:\n  steer_blend: 1\n", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate([]byte(tc.doc))
			if tc.valid && err != nil {
				t.Errorf("Validate() = %v, expected valid", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadCustomPathLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	doc := "movement:\n  base_speed: 3.5\nfood:\n  bites_per_room: 5\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Movement.BaseSpeed != 3.5 {
		t.Errorf("BaseSpeed = %v, expected 3.5", cfg.Movement.BaseSpeed)
	}
	if cfg.Food.BitesPerRoom != 5 {
		t.Errorf("BitesPerRoom = %v, expected 5", cfg.Food.BitesPerRoom)
	}
	if cfg.Body.BodyRadius != 0.28 {
		t.Errorf("BodyRadius = %v, expected default 0.28", cfg.Body.BodyRadius)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("room:\n  base_size: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() of an invalid file = %v, expected ErrInvalidConfig", err)
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset    DifficultyPreset
		enabled   bool
		initial   float64
		baseSpeed float64
	}{
		{DifficultyEasy, true, 0.0, 2.0},
		{DifficultyNormal, true, 0.3, 2.5},
		{DifficultyHard, true, 0.7, 3.0},
		{DifficultyFixed, false, 0.0, 2.5},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultHyperWormConfig()
			ApplyPreset(&cfg, tc.preset)
			if cfg.Difficulty.Enabled != tc.enabled {
				t.Errorf("Enabled = %v, expected %v", cfg.Difficulty.Enabled, tc.enabled)
			}
			if cfg.Difficulty.InitialLevel != tc.initial {
				t.Errorf("InitialLevel = %v, expected %v", cfg.Difficulty.InitialLevel, tc.initial)
			}
			if cfg.Movement.BaseSpeed != tc.baseSpeed {
				t.Errorf("BaseSpeed = %v, expected %v", cfg.Movement.BaseSpeed, tc.baseSpeed)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	if p, ok := ParsePreset(""); !ok || p != DifficultyNormal {
		t.Errorf("ParsePreset(\"\") = %v, %v", p, ok)
	}
	if p, ok := ParsePreset("hard"); !ok || p != DifficultyHard {
		t.Errorf("ParsePreset(hard) = %v, %v", p, ok)
	}
	if _, ok := ParsePreset("nightmare"); ok {
		t.Error("ParsePreset accepted an unknown preset")
	}
}
