package sim

import (
	"context"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent systems concurrently, each on its own
// simulator built by factory.
type Ensemble[F constraints.Float] struct {
	factory func() *Simulator[F]
	limit   int
}

// NewEnsemble returns an ensemble running at most limit systems at once;
// limit <= 0 means no limit.
func NewEnsemble[F constraints.Float](factory func() *Simulator[F], limit int) *Ensemble[F] {
	return &Ensemble[F]{factory: factory, limit: limit}
}

// Run simulates every system with cfg. The first failure cancels the
// remaining runs and is returned.
func (e *Ensemble[F]) Run(ctx context.Context, systems [][]dynamo.Particle[F], cfg Config[F]) ([]*Result[F], error) {
	results := make([]*Result[F], len(systems))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, system := range systems {
		i, system := i, system
		g.Go(func() error {
			res, err := e.factory().Run(ctx, system, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
