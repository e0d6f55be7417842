package ports

import (
	"context"

	"netpath/domain/network"
)

// UndirectedRequest carries the inputs for one constrained sparse
// precision-matrix estimation on a single condition's data slice.
type UndirectedRequest struct {
	Data   [][]float64  // genes x samples for one condition
	Zero   network.Mask // optional: entries held at exactly zero
	One    network.Mask // optional: known edges, penalized at Lambda*Weight
	Genes  []string
	Lambda float64 // l1 penalty on unconstrained off-diagonal entries
	Weight float64 // penalty multiplier for known edges; 0 treats them as certain
	Eta    float64 // diagonal perturbation of the empirical covariance
	Eps    float64 // sparsification threshold applied after convergence
}

// UndirectedEstimatorPort estimates a sparse symmetric precision matrix
// under zero/one constraints.
type UndirectedEstimatorPort interface {
	Estimate(ctx context.Context, req UndirectedRequest) (*network.Fit, error)
}

// DirectedRequest carries the inputs for directed edge-weight estimation
// under a topologically ordered adjacency mask.
type DirectedRequest struct {
	Data   [][]float64  // genes x samples for one condition, already in topological order
	Mask   network.Mask // Mask[i][j]=1 allows the edge i -> j; must respect the order
	Genes  []string
	Lambda float64
	Eta    float64
	Eps    float64
}

// DirectedEstimatorPort estimates directed edge weights by constrained
// regression along the declared topological order.
type DirectedEstimatorPort interface {
	Estimate(ctx context.Context, req DirectedRequest) (*network.Fit, error)
}
