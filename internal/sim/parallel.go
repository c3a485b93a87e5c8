package sim

import (
	"context"
	"sync"
)

// Builder creates a fully populated manager for one ensemble member.
type Builder func(seed int64) (*Manager, error)

// Ensemble runs independent managers in parallel, one per seed. Managers
// share nothing mutable except what the builder hands them.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			m, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = m.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
