package gravity

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/Ryneqq/nbody/internal/dynamo"
)

// minParallelChunk keeps small scenes on one goroutine.
const minParallelChunk = 32

// Merge records one coalescing event: Absorbed no longer exists after the
// tick, its mass lives on in Survivor.
type Merge struct {
	Survivor int
	Absorbed int
}

// TickReport is handed to observers after every committed tick.
type TickReport struct {
	Tick   int
	Bodies []Body
	Merges []Merge
}

// Observer is notified once per committed tick. Reports must be treated as
// read-only.
type Observer interface {
	OnTick(report TickReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(TickReport)

func (f ObserverFunc) OnTick(r TickReport) { f(r) }

// Scene owns the live bodies and advances them one tick at a time.
// A Scene is not safe for concurrent use; the force phase inside Update is
// parallel but never visible to callers.
type Scene struct {
	params    dynamo.Params
	workers   int
	bodies    []Body
	tick      int
	observers []Observer
}

// New builds a seeded scenario of count random bodies plus the generator's
// anchor.
func New(count int, seed int64, params dynamo.Params, gen Generator) (*Scene, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: body count must not be negative, got %d", dynamo.ErrParameterBounds, count)
	}
	rng := rand.New(rand.NewSource(seed))
	bodies, err := gen.Generate(rng, count, params)
	if err != nil {
		return nil, err
	}
	return &Scene{params: params, bodies: bodies}, nil
}

// FromBodies wraps an explicit body set. Bodies are revalidated and must
// carry distinct ids.
func FromBodies(bodies []Body, params dynamo.Params) (*Scene, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(bodies))
	owned := make([]Body, len(bodies))
	for i, b := range bodies {
		vb, err := NewValidatedBody(b.id, b.mass, b.position.Project(params.Dimensions), b.velocity.Project(params.Dimensions), params)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[b.id]; ok {
			return nil, fmt.Errorf("%w: %d", dynamo.ErrDuplicateID, b.id)
		}
		seen[b.id] = struct{}{}
		owned[i] = vb
	}
	return &Scene{params: params, bodies: owned}, nil
}

func (s *Scene) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetWorkers bounds the goroutines used by the force phase. Zero or less
// means GOMAXPROCS. The result of Update does not depend on it.
func (s *Scene) SetWorkers(n int) { s.workers = n }

func (s *Scene) Params() dynamo.Params { return s.params }
func (s *Scene) Tick() int             { return s.tick }
func (s *Scene) Len() int              { return len(s.bodies) }

// Bodies returns a copy of the current body set in scene order.
func (s *Scene) Bodies() []Body {
	return slices.Clone(s.bodies)
}

func (s *Scene) IDs() []int {
	ids := make([]int, len(s.bodies))
	for i, b := range s.bodies {
		ids[i] = b.id
	}
	return ids
}

func (s *Scene) TotalMass() float64       { return TotalMass(s.bodies) }
func (s *Scene) Momentum() dynamo.Vector  { return TotalMomentum(s.bodies) }
func (s *Scene) KineticEnergy() float64   { return KineticEnergy(s.bodies) }
func (s *Scene) PotentialEnergy() float64 { return PotentialEnergy(s.bodies) }

// Update advances the scene by one tick:
//
//  1. every body accumulates gravity from every other body of the pre-tick
//     snapshot and steps once (parallel, one output slot per body);
//  2. each updated body is keyed by its nearest-neighbour distance in the
//     snapshot;
//  3. bodies are stably sorted by that key, closest first;
//  4. the sorted run is coalesced in a single pass (see Coalesce);
//  5. the result replaces the body set.
//
// On an empty scene the body set is left untouched. The tick counter still
// advances and observers still receive an empty report, so drivers keep
// counting ticks uniformly.
func (s *Scene) Update() {
	snapshot := s.bodies
	n := len(snapshot)

	keyed := make([]keyedBody, n)
	dynamo.ParallelFor(n, s.workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			keyed[i] = advance(snapshot, i)
		}
	})

	// Stable sort keeps snapshot order between equal keys.
	slices.SortStableFunc(keyed, func(a, b keyedBody) int {
		switch {
		case a.nearest < b.nearest:
			return -1
		case a.nearest > b.nearest:
			return 1
		}
		return 0
	})

	sorted := make([]Body, n)
	for i, k := range keyed {
		sorted[i] = k.body
	}
	next, merges := Coalesce(sorted)

	s.bodies = next
	s.tick++

	if len(s.observers) == 0 {
		return
	}
	report := TickReport{Tick: s.tick, Bodies: slices.Clone(next), Merges: merges}
	for _, o := range s.observers {
		o.OnTick(report)
	}
}

type keyedBody struct {
	nearest float64
	body    Body
}

// advance computes the next state of snapshot[i] against the whole
// snapshot. It reads only the snapshot and returns a fresh body.
func advance(snapshot []Body, i int) keyedBody {
	body := snapshot[i]
	nearest := math.Inf(1)
	for j, other := range snapshot {
		if j == i {
			continue
		}
		body.ApplyGravity(other)
		if d := snapshot[i].Distance(other); d < nearest {
			nearest = d
		}
	}
	body.Step()

	return keyedBody{nearest: nearest, body: body}
}
