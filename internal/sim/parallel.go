package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Builder creates an independent simulator for one ensemble member.
type Builder func(seed int64) (*Simulator, error)

// Ensemble runs one simulation per consecutive seed. Members share nothing,
// so they run concurrently; each scene still parallelises its own force
// phase.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit caps the number of members running at once.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + int64(idx)
			sim, err := e.build(seed)
			if err != nil {
				return err
			}

			cfgCopy := cfg
			cfgCopy.Seed = seed
			res, err := sim.Run(ctx, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
