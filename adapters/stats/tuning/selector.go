// Package tuning selects the regularization strength for the undirected
// estimator by minimizing a BIC criterion over a caller-supplied grid.
package tuning

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"netpath/adapters/stats/covariance"
	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/ports"
)

// Selector evaluates every (lambda, weight) grid point with the undirected
// estimator, scores each fit with BIC, and picks the minimizer. Grid points
// are independent and run concurrently under a weighted semaphore; each
// writes exactly once to its own table slot, and selection happens only
// after all requested points have completed.
type Selector struct {
	Estimator   ports.UndirectedEstimatorPort
	Parallelism int64 // concurrent grid points; defaults to GOMAXPROCS
}

// NewSelector creates a selector around the given estimator.
func NewSelector(est ports.UndirectedEstimatorPort) *Selector {
	return &Selector{Estimator: est, Parallelism: int64(runtime.GOMAXPROCS(0))}
}

type gridPoint struct {
	lambda float64
	weight float64
}

// Select runs the grid search. Per-point estimation failures are recorded in
// their table rows without aborting sibling points; Select itself fails only
// when the grid is empty, the shared inputs are invalid, or no grid point
// produced a fit.
func (s *Selector) Select(ctx context.Context, req ports.TuningRequest) (*ports.TuningResult, error) {
	if len(req.Lambdas) == 0 {
		return nil, fmt.Errorf("%w: empty lambda grid", core.ErrDimension)
	}
	weights := req.Weights
	if len(weights) == 0 {
		weights = []float64{0}
	}

	// Shared shape/constraint validation happens once, eagerly, before any
	// expensive grid work. The covariance is also what BIC scoring needs.
	sHat, err := covariance.Build(req.Data, req.Eta)
	if err != nil {
		return nil, err
	}
	if req.Zero != nil {
		if err := req.Zero.ValidateSymmetric(len(sHat)); err != nil {
			return nil, err
		}
	}
	if req.One != nil {
		if err := req.One.ValidateSymmetric(len(sHat)); err != nil {
			return nil, err
		}
	}
	if err := network.Disjoint(req.Zero, req.One); err != nil {
		return nil, err
	}

	grid := make([]gridPoint, 0, len(req.Lambdas)*len(weights))
	for _, w := range weights {
		for _, l := range req.Lambdas {
			grid = append(grid, gridPoint{lambda: l, weight: w})
		}
	}

	parallelism := s.Parallelism
	if parallelism < 1 {
		parallelism = int64(runtime.GOMAXPROCS(0))
	}
	sem := semaphore.NewWeighted(parallelism)

	n := len(req.Data[0])
	table := make(network.BICTable, len(grid))
	fits := make([]*network.Fit, len(grid))

	var wg sync.WaitGroup
	for i, gp := range grid {
		wg.Add(1)
		go func(slot int, gp gridPoint) {
			defer wg.Done()
			rec := network.BICRecord{Lambda: gp.lambda, Weight: gp.weight}
			if err := sem.Acquire(ctx, 1); err != nil {
				rec.Err = err.Error()
				table[slot] = rec
				return
			}
			defer sem.Release(1)

			fit, err := s.Estimator.Estimate(ctx, ports.UndirectedRequest{
				Data:   req.Data,
				Zero:   req.Zero,
				One:    req.One,
				Genes:  req.Genes,
				Lambda: gp.lambda,
				Weight: gp.weight,
				Eta:    req.Eta,
				Eps:    req.Eps,
			})
			if err != nil {
				rec.Err = err.Error()
				table[slot] = rec
				return
			}
			rec.DF = fit.Network.EdgeCount()
			rec.BIC = BIC(sHat, fit.Omega, n, rec.DF)
			table[slot] = rec
			fits[slot] = fit
		}(i, gp)
	}
	wg.Wait()

	best := table.Best()
	if best == -1 {
		return nil, fmt.Errorf("all %d grid points failed, first: %s", len(grid), table[0].Err)
	}

	result := &ports.TuningResult{
		Table:  table,
		Lambda: table[best].Lambda,
		Weight: table[best].Weight,
		Fit:    fits[best],
	}
	if failed := table.Failed(); failed > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d grid points failed to fit", failed, len(grid)))
	}
	if allDegenerate(fits) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%v at every grid point; the lambda grid may be too aggressive", core.ErrDegenerateFit))
	}
	return result, nil
}

func allDegenerate(fits []*network.Fit) bool {
	any := false
	for _, f := range fits {
		if f == nil {
			continue
		}
		any = true
		if !f.Degenerate() {
			return false
		}
	}
	return any
}
