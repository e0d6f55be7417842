package enrich

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"netpath/domain/core"
)

// Components are the per-condition variance components of the mixed model
// Y = Lambda*beta + Lambda*gamma + eps: SigmaG scales the propagated
// pathway effect, SigmaE the independent noise.
type Components struct {
	SigmaG float64
	SigmaE float64
}

// negTolFraction bounds how far below zero a moment estimate may fall before
// it is treated as a failure rather than round-off.
const negTolFraction = 1e-8

// momentComponents is the fast restricted estimator: it matches the
// residual second-moment matrix Sr against sigmaG*G + sigmaE*I in the
// least-squares sense, which reduces to a 2x2 linear system in the traces.
func momentComponents(resid [][]float64, g *mat.Dense) (Components, error) {
	p := len(resid)
	n := float64(len(resid[0]))

	// Only the two inner products with Sr are needed, not Sr itself.
	var b1, b2 float64
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			acc := 0.0
			for t := range resid[i] {
				acc += resid[i][t] * resid[j][t]
			}
			sr := acc / n
			b1 += sr * g.At(i, j)
			if i == j {
				b2 += sr
			}
		}
	}

	var trG, trG2 float64
	for i := 0; i < p; i++ {
		trG += g.At(i, i)
		for j := 0; j < p; j++ {
			trG2 += g.At(i, j) * g.At(i, j)
		}
	}

	det := trG2*float64(p) - trG*trG
	if det <= 0 {
		return Components{}, core.NewDegenerateVarianceError("moment system determinant", det)
	}
	sigmaG := (float64(p)*b1 - trG*b2) / det
	sigmaE := (trG2*b2 - trG*b1) / det

	scale := b2 / float64(p)
	negTol := negTolFraction * math.Max(scale, 1)
	if sigmaG < -negTol {
		return Components{}, core.NewDegenerateVarianceError("sigma_g", sigmaG)
	}
	if sigmaE < -negTol {
		return Components{}, core.NewDegenerateVarianceError("sigma_e", sigmaE)
	}
	if sigmaG < 0 {
		sigmaG = 0
	}
	if sigmaE < 0 {
		sigmaE = 0
	}
	if sigmaG == 0 && sigmaE == 0 {
		return Components{}, core.NewDegenerateVarianceError("total variance", 0)
	}
	return Components{SigmaG: sigmaG, SigmaE: sigmaE}, nil
}

// likelihoodComponents is the full estimator: it profiles the Gaussian
// log-likelihood over the variance ratio tau = sigmaG/sigmaE in the
// eigenbasis of G, where the covariance is diagonal and sigmaE has a closed
// form given tau.
func likelihoodComponents(resid [][]float64, g *mat.Dense) (Components, error) {
	p := len(resid)
	n := float64(len(resid[0]))

	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (g.At(i, j)+g.At(j, i))/2)
		}
	}
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return Components{}, core.NewDegenerateVarianceError("eigen decomposition", math.NaN())
	}
	d := es.Values(nil)
	for i := range d {
		if d[i] < 0 {
			d[i] = 0
		}
	}
	var u mat.Dense
	es.VectorsTo(&u)

	// m_i: mean squared residual along eigenvector i
	m := make([]float64, p)
	for i := 0; i < p; i++ {
		acc := 0.0
		for t := 0; t < len(resid[0]); t++ {
			z := 0.0
			for k := 0; k < p; k++ {
				z += u.At(k, i) * resid[k][t]
			}
			acc += z * z
		}
		m[i] = acc / n
	}

	total := 0.0
	for _, v := range m {
		total += v
	}
	if total <= 0 {
		return Components{}, core.NewDegenerateVarianceError("residual variance", total)
	}

	profile := func(tau float64) float64 {
		logSum := 0.0
		sigmaE := 0.0
		for i := 0; i < p; i++ {
			v := tau*d[i] + 1
			logSum += math.Log(v)
			sigmaE += m[i] / v
		}
		sigmaE /= float64(p)
		if sigmaE <= 0 {
			return math.Inf(-1)
		}
		return -0.5 * n * (logSum + float64(p)*math.Log(sigmaE) + float64(p))
	}

	// Coarse log-spaced scan, then golden-section refinement of the bracket.
	best, bestLL := 0.0, profile(0)
	lo, hi := -6.0, 6.0
	const coarse = 61
	for i := 0; i < coarse; i++ {
		tau := math.Pow(10, lo+(hi-lo)*float64(i)/float64(coarse-1))
		if ll := profile(tau); ll > bestLL {
			best, bestLL = tau, ll
		}
	}
	if best > 0 {
		a, b := best/10, best*10
		const phi = 0.6180339887498949
		x1 := b - phi*(b-a)
		x2 := a + phi*(b-a)
		f1, f2 := profile(x1), profile(x2)
		for iter := 0; iter < 80 && b-a > 1e-10*(1+best); iter++ {
			if f1 < f2 {
				a, x1, f1 = x1, x2, f2
				x2 = a + phi*(b-a)
				f2 = profile(x2)
			} else {
				b, x2, f2 = x2, x1, f1
				x1 = b - phi*(b-a)
				f1 = profile(x1)
			}
		}
		tau := (a + b) / 2
		if ll := profile(tau); ll > bestLL {
			best, bestLL = tau, ll
		}
	}

	sigmaE := 0.0
	for i := 0; i < p; i++ {
		sigmaE += m[i] / (best*d[i] + 1)
	}
	sigmaE /= float64(p)
	return Components{SigmaG: best * sigmaE, SigmaE: sigmaE}, nil
}
