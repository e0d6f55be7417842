// Package directed estimates weighted edges for networks whose structure is
// pinned to a declared topological order, such as curated directed pathway
// graphs: each gene is regressed on its mask-allowed predecessors only.
package directed

import (
	"context"
	"fmt"
	"math"

	"netpath/adapters/stats/covariance"
	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/ports"
)

// Estimator fits one penalized regression per gene, in topological order,
// against the gene's allowed parent set. Back-edges cannot appear in the
// output by construction.
type Estimator struct {
	MaxIter int
	Tol     float64
}

// New creates an estimator with the default iteration budget and tolerance.
func New() *Estimator {
	return &Estimator{MaxIter: 1000, Tol: 1e-7}
}

// Estimate produces the weighted directed adjacency matrix. Mask[i][j]=1
// allows the edge i -> j and must satisfy i < j in the supplied ordering;
// anything else fails with an ordering error before any fitting happens.
func (e *Estimator) Estimate(ctx context.Context, req ports.DirectedRequest) (*network.Fit, error) {
	p := len(req.Data)
	if p == 0 {
		return nil, core.NewShapeError("expression slice", 0, 0)
	}
	if req.Mask == nil {
		return nil, fmt.Errorf("%w: directed estimation requires an adjacency mask", core.ErrDimension)
	}
	if err := req.Mask.ValidateOrdered(p); err != nil {
		return nil, err
	}
	if req.Lambda < 0 || req.Eta < 0 || req.Eps < 0 {
		return nil, fmt.Errorf("%w: lambda=%g eta=%g eps=%g must be non-negative", core.ErrDimension, req.Lambda, req.Eta, req.Eps)
	}
	n := 0
	if p > 0 {
		n = len(req.Data[0])
	}
	if n < 2 {
		return nil, core.NewDimensionError("directed estimation sample count", n, 2)
	}
	genes, err := geneLabels(req.Genes, p)
	if err != nil {
		return nil, err
	}

	centered := covariance.Center(req.Data)
	weights := make([][]float64, p)
	for i := range weights {
		weights[i] = make([]float64, p)
	}

	for j := 0; j < p; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parents := parentSet(req.Mask, j)
		if len(parents) == 0 {
			continue
		}
		coefs, err := e.lassoRegress(centered, parents, j, req.Lambda, req.Eta)
		if err != nil {
			return nil, err
		}
		for k, i := range parents {
			if math.Abs(coefs[k]) >= req.Eps {
				weights[i][j] = coefs[k]
			}
		}
	}

	net := &network.Network{
		Kind:      network.Directed,
		Genes:     genes,
		Weights:   weights,
		Adjacency: binarize(weights),
	}
	fit := &network.Fit{Network: net}
	if fit.Degenerate() {
		fit.Warnings = append(fit.Warnings,
			fmt.Sprintf("%v (lambda=%g, eps=%g)", core.ErrDegenerateFit, req.Lambda, req.Eps))
	}
	return fit, nil
}

// parentSet lists the mask-allowed direct predecessors of gene j.
func parentSet(mask network.Mask, j int) []int {
	var parents []int
	for i := 0; i < j; i++ {
		if mask.Has(i, j) {
			parents = append(parents, i)
		}
	}
	return parents
}

// lassoRegress solves the penalized regression of gene j on its parents by
// coordinate descent on the Gram matrix. The eta ridge keeps the problem
// well-posed when the parent count approaches the sample count.
func (e *Estimator) lassoRegress(centered [][]float64, parents []int, j int, lambda, eta float64) ([]float64, error) {
	n := float64(len(centered[j]))
	q := len(parents)

	gram := make([][]float64, q)
	for a := range gram {
		gram[a] = make([]float64, q)
	}
	for a := 0; a < q; a++ {
		for b := a; b < q; b++ {
			acc := 0.0
			for t := range centered[parents[a]] {
				acc += centered[parents[a]][t] * centered[parents[b]][t]
			}
			g := acc / n
			gram[a][b] = g
			gram[b][a] = g
		}
		gram[a][a] += eta
		if gram[a][a] <= 0 {
			return nil, fmt.Errorf("%w: parent gene %d has zero variance; increase eta", core.ErrConvergence, parents[a])
		}
	}
	corr := make([]float64, q)
	for a := 0; a < q; a++ {
		acc := 0.0
		for t := range centered[j] {
			acc += centered[parents[a]][t] * centered[j][t]
		}
		corr[a] = acc / n
	}

	coefs := make([]float64, q)
	for iter := 0; iter < e.MaxIter; iter++ {
		maxDelta := 0.0
		for a := 0; a < q; a++ {
			r := corr[a]
			for b := 0; b < q; b++ {
				if b == a || coefs[b] == 0 {
					continue
				}
				r -= gram[a][b] * coefs[b]
			}
			next := softThreshold(r, lambda) / gram[a][a]
			if d := math.Abs(next - coefs[a]); d > maxDelta {
				maxDelta = d
			}
			coefs[a] = next
		}
		if maxDelta <= e.Tol {
			return coefs, nil
		}
	}
	return nil, core.NewConvergenceError(e.MaxIter, e.Tol)
}

func binarize(weights [][]float64) [][]int {
	p := len(weights)
	adj := make([][]int, p)
	for i := range adj {
		adj[i] = make([]int, p)
		for j := range adj[i] {
			if weights[i][j] != 0 {
				adj[i][j] = 1
			}
		}
	}
	return adj
}

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}

func geneLabels(genes []string, p int) ([]string, error) {
	if len(genes) == 0 {
		out := make([]string, p)
		for i := range out {
			out[i] = fmt.Sprintf("g%d", i+1)
		}
		return out, nil
	}
	if len(genes) != p {
		return nil, core.NewDimensionError("gene labels", len(genes), p)
	}
	return append([]string(nil), genes...), nil
}
