package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
	"github.com/Ryneqq/nbody/internal/sim"
)

const (
	DefaultBodies     = 300
	DefaultTicks      = 1000
	DefaultSeed       = 1
	DefaultStatsEvery = 1
	DefaultPreset     = "3d"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Dimensions      int             `yaml:"dimensions"`
	Bodies          int             `yaml:"bodies"`
	Seed            int64           `yaml:"seed"`
	Ticks           int             `yaml:"ticks"`
	StatsEvery      int             `yaml:"stats_every"`
	G               float64         `yaml:"g"`
	Dt              float64         `yaml:"dt"`
	RadiusMassScale float64         `yaml:"radius_mass_scale"`
	RadiusDivisor   float64         `yaml:"radius_divisor"`
	Workers         int             `yaml:"workers"`
	Generator       GeneratorConfig `yaml:"generator"`
	InitialBodies   []BodyConfig    `yaml:"initial_bodies,omitempty"`
}

type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type AxesConfig struct {
	X RangeConfig `yaml:"x"`
	Y RangeConfig `yaml:"y"`
	Z RangeConfig `yaml:"z"`
}

type VectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type AnchorConfig struct {
	Mass     float64      `yaml:"mass"`
	Position VectorConfig `yaml:"position"`
	Disabled bool         `yaml:"disabled,omitempty"`
}

type GeneratorConfig struct {
	Mass     RangeConfig  `yaml:"mass"`
	Position AxesConfig   `yaml:"position"`
	Velocity AxesConfig   `yaml:"velocity"`
	Anchor   AnchorConfig `yaml:"anchor"`
}

// BodyConfig is one explicitly placed body. When InitialBodies is set the
// generator is not used.
type BodyConfig struct {
	ID       int          `yaml:"id"`
	Mass     float64      `yaml:"mass"`
	Position VectorConfig `yaml:"position"`
	Velocity VectorConfig `yaml:"velocity"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Dimensions:      p.Dimensions,
		Bodies:          DefaultBodies,
		Seed:            DefaultSeed,
		Ticks:           DefaultTicks,
		StatsEvery:      DefaultStatsEvery,
		G:               p.G,
		Dt:              p.Dt,
		RadiusMassScale: p.RadiusMassScale,
		RadiusDivisor:   p.RadiusDivisor,
		Generator:       FromGenerator(gravity.Generator3D()),
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base; keys absent from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, safe to mutate.
func (c *Config) Clone() *Config {
	out := *c
	out.InitialBodies = slices.Clone(c.InitialBodies)
	return &out
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		G:               c.G,
		Dt:              c.Dt,
		RadiusMassScale: c.RadiusMassScale,
		RadiusDivisor:   c.RadiusDivisor,
		Dimensions:      c.Dimensions,
	}
}

func (c *Config) GeneratorSpec() gravity.Generator {
	g := c.Generator
	return gravity.Generator{
		Mass:     g.Mass.toRange(),
		Position: [3]gravity.Range{g.Position.X.toRange(), g.Position.Y.toRange(), g.Position.Z.toRange()},
		Velocity: [3]gravity.Range{g.Velocity.X.toRange(), g.Velocity.Y.toRange(), g.Velocity.Z.toRange()},
		Anchor: gravity.Anchor{
			Mass:     g.Anchor.Mass,
			Position: g.Anchor.Position.toVector(),
			Disabled: g.Anchor.Disabled,
		},
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Ticks:         c.Ticks,
		Seed:          c.Seed,
		ValidateState: true,
		StatsEvery:    c.StatsEvery,
	}
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Bodies < 0 {
		return fmt.Errorf("%w: bodies must not be negative, got %d", ErrInvalidConfig, c.Bodies)
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.StatsEvery < 0 {
		return fmt.Errorf("%w: stats_every must not be negative, got %d", ErrInvalidConfig, c.StatsEvery)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if len(c.InitialBodies) > 0 {
		seen := make(map[int]bool, len(c.InitialBodies))
		for _, b := range c.InitialBodies {
			if seen[b.ID] {
				return fmt.Errorf("%w: %d", dynamo.ErrDuplicateID, b.ID)
			}
			seen[b.ID] = true
		}
		return nil
	}
	return c.GeneratorSpec().Validate()
}

// BuildScene constructs the initial scene: the explicit body list when one
// is configured, otherwise a seeded scenario from the generator.
func (c *Config) BuildScene() (*gravity.Scene, error) {
	return c.BuildSceneWithSeed(c.Seed)
}

func (c *Config) BuildSceneWithSeed(seed int64) (*gravity.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	params := c.Params()

	var scene *gravity.Scene
	var err error
	if len(c.InitialBodies) == 0 {
		scene, err = gravity.New(c.Bodies, seed, params, c.GeneratorSpec())
	} else {
		bodies := make([]gravity.Body, len(c.InitialBodies))
		for i, b := range c.InitialBodies {
			bodies[i] = gravity.NewBody(b.ID, b.Mass, b.Position.toVector(), b.Velocity.toVector(), params)
		}
		scene, err = gravity.FromBodies(bodies, params)
	}
	if err != nil {
		return nil, err
	}
	scene.SetWorkers(c.Workers)
	return scene, nil
}

// FromGenerator converts generator ranges back to their YAML form.
func FromGenerator(g gravity.Generator) GeneratorConfig {
	axes := func(r [3]gravity.Range) AxesConfig {
		return AxesConfig{X: fromRange(r[0]), Y: fromRange(r[1]), Z: fromRange(r[2])}
	}
	return GeneratorConfig{
		Mass:     fromRange(g.Mass),
		Position: axes(g.Position),
		Velocity: axes(g.Velocity),
		Anchor: AnchorConfig{
			Mass:     g.Anchor.Mass,
			Position: VectorConfig{X: g.Anchor.Position.X, Y: g.Anchor.Position.Y, Z: g.Anchor.Position.Z},
			Disabled: g.Anchor.Disabled,
		},
	}
}

func (r RangeConfig) toRange() gravity.Range { return gravity.Range{Min: r.Min, Max: r.Max} }

func fromRange(r gravity.Range) RangeConfig { return RangeConfig{Min: r.Min, Max: r.Max} }

func (v VectorConfig) toVector() dynamo.Vector { return dynamo.Vec3(v.X, v.Y, v.Z) }
