// Package glasso estimates sparse symmetric precision matrices under partial
// prior knowledge of edges: zero-mask entries are held at exactly zero, known
// edges are penalized at a caller-chosen fraction of the base penalty.
package glasso

import (
	"context"
	"fmt"
	"math"

	"netpath/adapters/stats/covariance"
	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/ports"
)

// Estimator solves the l1-penalized Gaussian log-likelihood maximization by
// block coordinate descent over the covariance estimate, one column at a
// time, with a per-entry penalty matrix.
type Estimator struct {
	MaxIter int     // outer sweep budget
	Tol     float64 // relative convergence tolerance on the working covariance
}

// New creates an estimator with the default iteration budget and tolerance.
func New() *Estimator {
	return &Estimator{MaxIter: 200, Tol: 1e-4}
}

// Estimate fits a constrained sparse precision matrix to one condition's
// data slice. See ports.UndirectedRequest for the parameter contract.
func (e *Estimator) Estimate(ctx context.Context, req ports.UndirectedRequest) (*network.Fit, error) {
	p := len(req.Data)
	if p == 0 {
		return nil, core.NewShapeError("expression slice", 0, 0)
	}
	if req.Lambda < 0 {
		return nil, fmt.Errorf("%w: lambda %g must be non-negative", core.ErrDimension, req.Lambda)
	}
	if req.Weight < 0 {
		return nil, fmt.Errorf("%w: weight %g must be non-negative", core.ErrDimension, req.Weight)
	}
	if req.Eps < 0 {
		return nil, fmt.Errorf("%w: eps %g must be non-negative", core.ErrDimension, req.Eps)
	}
	if req.Zero != nil {
		if err := req.Zero.ValidateSymmetric(p); err != nil {
			return nil, err
		}
	}
	if req.One != nil {
		if err := req.One.ValidateSymmetric(p); err != nil {
			return nil, err
		}
	}
	if err := network.Disjoint(req.Zero, req.One); err != nil {
		return nil, err
	}
	genes, err := geneLabels(req.Genes, p)
	if err != nil {
		return nil, err
	}

	s, err := covariance.Build(req.Data, req.Eta)
	if err != nil {
		return nil, err
	}

	rho := penaltyMatrix(p, req.Lambda, req.Weight, req.One)
	w, beta, err := e.solve(ctx, s, rho, req.Zero)
	if err != nil {
		return nil, err
	}

	omega, err := recoverPrecision(w, beta)
	if err != nil {
		return nil, err
	}
	symmetrize(omega)
	applyConstraints(omega, req.Zero, req.Eps)

	net := &network.Network{
		Kind:      network.Undirected,
		Genes:     genes,
		Weights:   omega,
		Adjacency: binarize(omega),
	}
	fit := &network.Fit{Network: net, Omega: omega}
	if fit.Degenerate() {
		fit.Warnings = append(fit.Warnings,
			fmt.Sprintf("%v (lambda=%g, eps=%g)", core.ErrDegenerateFit, req.Lambda, req.Eps))
	}
	return fit, nil
}

// penaltyMatrix builds the per-entry l1 penalties: lambda off the diagonal,
// lambda*weight on known edges, zero on the diagonal. Forbidden entries are
// excluded from estimation entirely, so their penalty is irrelevant.
func penaltyMatrix(p int, lambda, weight float64, one network.Mask) [][]float64 {
	rho := make([][]float64, p)
	for i := range rho {
		rho[i] = make([]float64, p)
		for j := range rho[i] {
			if i == j {
				continue
			}
			if one != nil && one.Has(i, j) {
				rho[i][j] = lambda * weight
			} else {
				rho[i][j] = lambda
			}
		}
	}
	return rho
}

// solve runs block coordinate descent: the working covariance W starts at the
// empirical covariance, and each sweep re-solves every column's lasso
// subproblem against the current W. Convergence is declared when no W entry
// moves more than Tol times the mean absolute off-diagonal of S.
func (e *Estimator) solve(ctx context.Context, s, rho [][]float64, zero network.Mask) (w, beta [][]float64, err error) {
	p := len(s)
	w = make([][]float64, p)
	beta = make([][]float64, p)
	for i := range w {
		w[i] = append([]float64(nil), s[i]...)
		beta[i] = make([]float64, p)
	}

	thr := e.Tol * meanAbsOffDiag(s)
	if thr <= 0 {
		thr = e.Tol
	}

	for iter := 0; iter < e.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			lassoColumn(s, w, rho, zero, beta[j], j, thr)
			for i := 0; i < p; i++ {
				if i == j {
					continue
				}
				updated := 0.0
				for k := 0; k < p; k++ {
					if k == j || beta[j][k] == 0 {
						continue
					}
					updated += w[i][k] * beta[j][k]
				}
				if d := math.Abs(updated - w[i][j]); d > maxDelta {
					maxDelta = d
				}
				w[i][j] = updated
				w[j][i] = updated
			}
		}
		if maxDelta <= thr {
			return w, beta, nil
		}
	}
	return nil, nil, core.NewConvergenceError(e.MaxIter, e.Tol)
}

// lassoColumn solves the column subproblem
// min 0.5*b'W11*b - s12'b + sum_i rho_i|b_i| by coordinate descent,
// holding forbidden coefficients at exactly zero.
func lassoColumn(s, w, rho [][]float64, zero network.Mask, b []float64, j int, thr float64) {
	p := len(s)
	for sweep := 0; sweep < 100; sweep++ {
		maxDelta := 0.0
		for i := 0; i < p; i++ {
			if i == j {
				continue
			}
			if zero != nil && zero.Has(i, j) {
				b[i] = 0
				continue
			}
			r := s[i][j]
			for k := 0; k < p; k++ {
				if k == j || k == i || b[k] == 0 {
					continue
				}
				r -= w[i][k] * b[k]
			}
			next := softThreshold(r, rho[i][j]) / w[i][i]
			if d := math.Abs(next - b[i]); d > maxDelta {
				maxDelta = d
			}
			b[i] = next
		}
		if maxDelta <= thr {
			return
		}
	}
}

// recoverPrecision converts the converged working covariance and column
// coefficients back into the precision matrix.
func recoverPrecision(w, beta [][]float64) ([][]float64, error) {
	p := len(w)
	omega := make([][]float64, p)
	for i := range omega {
		omega[i] = make([]float64, p)
	}
	for j := 0; j < p; j++ {
		q := w[j][j]
		for i := 0; i < p; i++ {
			if i != j {
				q -= w[i][j] * beta[j][i]
			}
		}
		if q <= 0 || math.IsNaN(q) {
			return nil, fmt.Errorf("%w: working covariance lost positive-definiteness at column %d", core.ErrConvergence, j)
		}
		ojj := 1.0 / q
		omega[j][j] = ojj
		for i := 0; i < p; i++ {
			if i != j {
				omega[i][j] = -beta[j][i] * ojj
			}
		}
	}
	return omega, nil
}

// symmetrize averages the matrix with its transpose to correct the small
// numerical asymmetry left by column-wise recovery.
func symmetrize(m [][]float64) {
	p := len(m)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			avg := (m[i][j] + m[j][i]) / 2
			m[i][j] = avg
			m[j][i] = avg
		}
	}
}

// applyConstraints pins forbidden entries at exactly zero and sparsifies
// off-diagonal entries below eps.
func applyConstraints(omega [][]float64, zero network.Mask, eps float64) {
	p := len(omega)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			if zero != nil && zero.Has(i, j) {
				omega[i][j] = 0
				continue
			}
			if math.Abs(omega[i][j]) < eps {
				omega[i][j] = 0
			}
		}
	}
}

func binarize(omega [][]float64) [][]int {
	p := len(omega)
	adj := make([][]int, p)
	for i := range adj {
		adj[i] = make([]int, p)
		for j := range adj[i] {
			if i != j && omega[i][j] != 0 {
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

func meanAbsOffDiag(s [][]float64) float64 {
	p := len(s)
	if p < 2 {
		return 0
	}
	sum := 0.0
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i != j {
				sum += math.Abs(s[i][j])
			}
		}
	}
	return sum / float64(p*(p-1))
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
