package metrics

import "github.com/Ryneqq/nbody/internal/gravity"

// Metric accumulates one scalar over the ticks of a run.
type Metric interface {
	Name() string
	Observe(r gravity.TickReport)
	Value() float64
	Reset()
}

// DefaultStabilityRadius bounds the stability metric for the bundled
// presets; bodies flung beyond it count as escaped.
const DefaultStabilityRadius = 1e6

// Default returns a fresh set of the metrics reported by every run.
func Default() []Metric {
	return []Metric{
		NewBodyCount(),
		NewMergeCount(),
		NewMassDrift(),
		NewMomentumDrift(),
		NewEnergyDrift(),
		NewKineticEnergy(),
		NewStability(DefaultStabilityRadius),
	}
}
