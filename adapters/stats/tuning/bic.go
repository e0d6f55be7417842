package tuning

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BIC scores a fitted precision matrix against the empirical covariance:
// trace(S*Omega) - logdet(Omega) + (log n / n) * df, where df counts the
// nonzero off-diagonal entries of Omega with each undirected edge once.
func BIC(s, omega [][]float64, n, df int) float64 {
	p := len(s)
	tr := 0.0
	for i := 0; i < p; i++ {
		for k := 0; k < p; k++ {
			tr += s[i][k] * omega[k][i]
		}
	}
	return tr - logDet(omega) + math.Log(float64(n))/float64(n)*float64(df)
}

// logDet computes the log-determinant of a symmetric positive-definite
// matrix via Cholesky, falling back to LU if the factorization fails from
// accumulated round-off.
func logDet(m [][]float64) float64 {
	p := len(m)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (m[i][j]+m[j][i])/2)
		}
	}
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		return chol.LogDet()
	}
	dense := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			dense.Set(i, j, m[i][j])
		}
	}
	det, sign := mat.LogDet(dense)
	if sign <= 0 {
		return math.Inf(-1)
	}
	return det
}
