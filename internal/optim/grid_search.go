package optim

import (
	"context"
	"math"
)

// Sample is one evaluated grid point.
type Sample struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

// Evaluator runs a scenario with the given parameters and returns its metrics.
type Evaluator func(ctx context.Context, params map[string]float64) (map[string]float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter ranges in order and
// returns the samples plus the index of the one minimising metric, or -1
// when no evaluation succeeded. Failed evaluations are kept with their
// error. Search stops early when ctx is done.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator, metric string) ([]Sample, int, error) {
	var samples []Sample
	best := -1
	bestVal := math.Inf(1)

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		m, err := eval(ctx, params)
		samples = append(samples, Sample{Params: params, Metrics: m, Err: err})
		if err != nil {
			return
		}
		if v, ok := m[metric]; ok && v < bestVal {
			bestVal = v
			best = len(samples) - 1
		}
	})
	return samples, best, err
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
