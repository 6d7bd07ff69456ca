package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dimensions != 3 {
		t.Errorf("expected 3 dimensions, got %d", cfg.Dimensions)
	}
	if cfg.Dt <= 0 || cfg.G <= 0 {
		t.Error("g and dt should be positive")
	}
	if cfg.Ticks <= 0 {
		t.Error("ticks should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if diff := cmp.Diff(gravity.Generator3D(), cfg.GeneratorSpec()); diff != "" {
		t.Errorf("default generator mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("collision")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := writeFile(path, "bodies: 12\ndimensions: 2\n"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Bodies != 12 || cfg.Dimensions != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.G != dynamo.DefaultG || cfg.Ticks != DefaultTicks {
		t.Errorf("defaults lost: g=%g ticks=%d", cfg.G, cfg.Ticks)
	}
}

func TestLoadOver_LayersOnPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := writeFile(path, "seed: 9\n"); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("2d")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Seed != 9 || cfg.Dimensions != 2 || cfg.Bodies != base.Bodies {
		t.Errorf("layered config = %+v", cfg)
	}
	if base.Seed == 9 {
		t.Error("LoadOver mutated its base")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := writeFile(path, "bodies: [not, a, number]\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"negative bodies", func(c *Config) { c.Bodies = -1 }, ErrInvalidConfig},
		{"zero ticks", func(c *Config) { c.Ticks = 0 }, ErrInvalidConfig},
		{"negative stats interval", func(c *Config) { c.StatsEvery = -2 }, ErrInvalidConfig},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidConfig},
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrParameterBounds},
		{"negative radius divisor", func(c *Config) { c.RadiusDivisor = -500 }, dynamo.ErrParameterBounds},
		{"bad dimensions", func(c *Config) { c.Dimensions = 4 }, dynamo.ErrDimensions},
		{"massless generator", func(c *Config) { c.Generator.Mass.Min = 0 }, dynamo.ErrInvalidMass},
		{"duplicate initial ids", func(c *Config) {
			c.InitialBodies = []BodyConfig{{ID: 1, Mass: 1}, {ID: 1, Mass: 2}}
		}, dynamo.ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildScene(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		cfg := GetPreset("2d")
		cfg.Bodies = 10
		s, err := cfg.BuildScene()
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		if s.Len() != 11 {
			t.Errorf("expected 10 bodies plus anchor, got %d", s.Len())
		}
	})

	t.Run("explicit", func(t *testing.T) {
		cfg := GetPreset("collision")
		s, err := cfg.BuildScene()
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		if diff := cmp.Diff([]int{0, 1}, s.IDs()); diff != "" {
			t.Errorf("ids mismatch: %s", diff)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		cfg := GetPreset("collision")
		cfg.InitialBodies[0].Mass = -1
		if _, err := cfg.BuildScene(); !errors.Is(err, dynamo.ErrInvalidMass) {
			t.Errorf("expected ErrInvalidMass, got %v", err)
		}
	})
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("2d")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Dimensions != 2 {
		t.Errorf("expected 2 dimensions, got %d", cfg.Dimensions)
	}

	cfg.Bodies = 1
	if Presets["2d"].Bodies == 1 {
		t.Error("GetPreset returned a shared config")
	}

	col := GetPreset("collision")
	col.InitialBodies[0].Mass = 7
	if Presets["collision"].InitialBodies[0].Mass == 7 {
		t.Error("GetPreset shares initial bodies")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"2d", "3d", "cluster", "collision"}
	if diff := cmp.Diff(want, ListPresets()); diff != "" {
		t.Errorf("presets mismatch (-want +got):\n%s", diff)
	}
	for _, name := range ListPresets() {
		if Descriptions[name] == "" {
			t.Errorf("preset %s has no description", name)
		}
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
