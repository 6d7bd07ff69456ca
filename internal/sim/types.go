package sim

import (
	"fmt"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
)

type Config struct {
	Ticks         int
	Seed          int64
	ValidateState bool
	// StatsEvery records a Stats row every n ticks. The initial and final
	// ticks are always recorded.
	StatsEvery int
}

func DefaultConfig() Config {
	return Config{
		Ticks:         1000,
		Seed:          1,
		ValidateState: true,
		StatsEvery:    1,
	}
}

func (c Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrParameterBounds, c.Ticks)
	}
	if c.StatsEvery < 0 {
		return fmt.Errorf("%w: stats interval must not be negative, got %d", dynamo.ErrParameterBounds, c.StatsEvery)
	}
	return nil
}

// Stats is one row of scene diagnostics.
type Stats struct {
	Tick            int     `json:"tick"`
	Bodies          int     `json:"bodies"`
	Merges          int     `json:"merges"`
	TotalMass       float64 `json:"total_mass"`
	Momentum        float64 `json:"momentum"`
	KineticEnergy   float64 `json:"kinetic_energy"`
	PotentialEnergy float64 `json:"potential_energy"`
}

func StatsOf(r gravity.TickReport) Stats {
	return Stats{
		Tick:            r.Tick,
		Bodies:          len(r.Bodies),
		Merges:          len(r.Merges),
		TotalMass:       gravity.TotalMass(r.Bodies),
		Momentum:        gravity.TotalMomentum(r.Bodies).Norm(),
		KineticEnergy:   gravity.KineticEnergy(r.Bodies),
		PotentialEnergy: gravity.PotentialEnergy(r.Bodies),
	}
}

type Result struct {
	Seed       int64
	Stats      []Stats
	Metrics    map[string]float64
	TicksTaken int
	Final      []gravity.Body
	Errors     []error
}
