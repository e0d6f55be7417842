package enrich

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"netpath/domain/core"
	"netpath/domain/network"
)

// Influence derives the propagation matrix Lambda that maps latent gene
// signals to observed expression. For an undirected network the precision
// matrix Omega gives Lambda = chol(Omega^-1), so Lambda*Lambda' recovers the
// implied covariance. For a directed network with weighted adjacency A the
// structural equations X = A'X + e give Lambda = (I - A')^-1.
func Influence(net *network.Network) (*mat.Dense, error) {
	p := net.Size()
	if p == 0 || len(net.Weights) != p {
		return nil, core.NewShapeError("network weights", len(net.Weights), p)
	}
	switch net.Kind {
	case network.Undirected:
		return undirectedInfluence(net.Weights)
	case network.Directed:
		return directedInfluence(net.Weights)
	default:
		return nil, fmt.Errorf("%w: unknown network kind %q", core.ErrDimension, net.Kind)
	}
}

func undirectedInfluence(omega [][]float64) (*mat.Dense, error) {
	p := len(omega)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (omega[i][j]+omega[j][i])/2)
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, fmt.Errorf("%w: precision matrix is not positive definite; increase eta upstream", core.ErrDegenerateVariance)
	}
	var sigma mat.SymDense
	if err := chol.InverseTo(&sigma); err != nil {
		return nil, fmt.Errorf("%w: inverting precision matrix: %v", core.ErrDegenerateVariance, err)
	}
	var cholSigma mat.Cholesky
	if !cholSigma.Factorize(&sigma) {
		return nil, fmt.Errorf("%w: implied covariance is not positive definite", core.ErrDegenerateVariance)
	}
	var l mat.TriDense
	cholSigma.LTo(&l)

	out := mat.NewDense(p, p, nil)
	out.Copy(&l)
	return out, nil
}

func directedInfluence(weights [][]float64) (*mat.Dense, error) {
	p := len(weights)
	m := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			v := 0.0
			if i == j {
				v = 1
			}
			// I - A', using the structural weights A[i][j] for edge i->j
			m.Set(i, j, v-weights[j][i])
		}
	}
	eye := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		eye.Set(i, i, 1)
	}
	out := mat.NewDense(p, p, nil)
	if err := out.Solve(m, eye); err != nil {
		return nil, fmt.Errorf("%w: directed adjacency is singular: %v", core.ErrDegenerateVariance, err)
	}
	return out, nil
}
