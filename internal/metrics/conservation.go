package metrics

import (
	"math"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
)

// MassDrift is the largest relative deviation of the total mass from the
// first observation. Merging conserves mass, so anything beyond rounding
// points at a lost or duplicated body.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(r gravity.TickReport) {
	total := gravity.TotalMass(r.Bodies)
	if m.samples == 0 {
		m.initial = total
	}
	m.samples++

	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(total-m.initial)/m.initial)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MomentumDrift is the largest change of total momentum relative to the
// initial sum of per-body momentum magnitudes. For a scene at rest it falls
// back to the absolute change.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vector
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(r gravity.TickReport) {
	p := gravity.TotalMomentum(r.Bodies)
	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for _, b := range r.Bodies {
			m.scale += b.Momentum().Norm()
		}
	}
	m.samples++

	drift := p.Sub(m.initial).Norm()
	if m.scale > 0 {
		drift /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vector{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
