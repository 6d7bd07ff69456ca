package metrics

import "github.com/Ryneqq/nbody/internal/gravity"

// MergeCount counts coalescing events.
type MergeCount struct {
	name   string
	merges int
}

func NewMergeCount() *MergeCount {
	return &MergeCount{name: "merges"}
}

func (m *MergeCount) Name() string { return m.name }

func (m *MergeCount) Observe(r gravity.TickReport) { m.merges += len(r.Merges) }

func (m *MergeCount) Value() float64 { return float64(m.merges) }

func (m *MergeCount) Reset() { m.merges = 0 }

// BodyCount reports the number of bodies at the last observation.
type BodyCount struct {
	name  string
	count int
}

func NewBodyCount() *BodyCount {
	return &BodyCount{name: "bodies"}
}

func (b *BodyCount) Name() string { return b.name }

func (b *BodyCount) Observe(r gravity.TickReport) { b.count = len(r.Bodies) }

func (b *BodyCount) Value() float64 { return float64(b.count) }

func (b *BodyCount) Reset() { b.count = 0 }
