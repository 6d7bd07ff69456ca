package config

import (
	"slices"

	"github.com/Ryneqq/nbody/internal/gravity"
)

var Presets = map[string]*Config{
	"3d": DefaultConfig(),
	"2d": func() *Config {
		c := DefaultConfig()
		c.Dimensions = 2
		c.Bodies = 100
		c.Generator = FromGenerator(gravity.Generator2D())
		return c
	}(),
	// A tight swarm without an anchor that collapses within a few ticks.
	"cluster": func() *Config {
		c := DefaultConfig()
		c.Bodies = 50
		c.Ticks = 200
		c.Generator = FromGenerator(gravity.Generator{
			Mass: gravity.Range{Min: 1e7, Max: 1e8},
			Position: [3]gravity.Range{
				{Min: -0.05, Max: 0.05}, {Min: -0.05, Max: 0.05}, {Min: -0.05, Max: 0.05},
			},
			Velocity: [3]gravity.Range{
				{Min: -0.01, Max: 0.01}, {Min: -0.01, Max: 0.01}, {Min: -0.01, Max: 0.01},
			},
			Anchor: gravity.Anchor{Disabled: true},
		})
		return c
	}(),
	// Two bodies on a head-on course in the plane.
	"collision": func() *Config {
		c := DefaultConfig()
		c.Dimensions = 2
		c.Ticks = 100
		c.RadiusMassScale = 1
		c.RadiusDivisor = 5
		c.InitialBodies = []BodyConfig{
			{ID: 0, Mass: 100, Position: VectorConfig{X: -10}, Velocity: VectorConfig{X: 0.5}},
			{ID: 1, Mass: 300, Position: VectorConfig{X: 10}, Velocity: VectorConfig{X: -0.5}},
		}
		return c
	}(),
}

var Descriptions = map[string]string{
	"3d":        "light bodies around a heavy anchor",
	"2d":        "planar field on a 1200x900 plane",
	"cluster":   "tight swarm that collapses",
	"collision": "two bodies on a head-on course",
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
