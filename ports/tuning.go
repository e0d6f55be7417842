package ports

import (
	"context"

	"netpath/domain/network"
)

// TuningRequest describes a BIC grid search over regularization strengths
// and, optionally, known-edge penalty weights.
type TuningRequest struct {
	Data    [][]float64
	Zero    network.Mask
	One     network.Mask
	Genes   []string
	Lambdas []float64 // non-empty, caller-supplied grid
	Weights []float64 // optional; defaults to a single weight of 0
	Eta     float64
	Eps     float64
}

// TuningResult is the outcome of a full grid search: the complete BIC table,
// the selected grid point, and the fit at that point.
type TuningResult struct {
	Table    network.BICTable
	Lambda   float64
	Weight   float64
	Fit      *network.Fit
	Warnings []string
}

// TuningSelectorPort runs the undirected estimator across a grid and selects
// the BIC-minimizing regularization.
type TuningSelectorPort interface {
	Select(ctx context.Context, req TuningRequest) (*TuningResult, error)
}
