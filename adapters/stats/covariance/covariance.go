// Package covariance builds empirical covariance matrices for one
// condition's expression slice.
package covariance

import (
	"fmt"

	"netpath/domain/core"
)

// Build computes the column-centered empirical covariance of a p x n
// (genes x samples) slice, with eta added to every diagonal entry. The eta
// ridge guarantees positive-definiteness when n < p or genes are collinear.
func Build(data [][]float64, eta float64) ([][]float64, error) {
	p := len(data)
	if p == 0 {
		return nil, core.NewShapeError("covariance input", 0, 0)
	}
	n := len(data[0])
	if n < 2 {
		return nil, core.NewDimensionError("covariance sample count", n, 2)
	}
	for i, row := range data {
		if len(row) != n {
			return nil, core.NewDimensionError(fmt.Sprintf("covariance input row %d", i), len(row), n)
		}
	}
	if eta < 0 {
		return nil, fmt.Errorf("%w: eta %g must be non-negative", core.ErrDimension, eta)
	}

	means := make([]float64, p)
	for i, row := range data {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		means[i] = sum / float64(n)
	}

	s := make([][]float64, p)
	for i := range s {
		s[i] = make([]float64, p)
	}
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			acc := 0.0
			for t := 0; t < n; t++ {
				acc += (data[i][t] - means[i]) * (data[j][t] - means[j])
			}
			cov := acc / float64(n)
			s[i][j] = cov
			s[j][i] = cov
		}
		s[i][i] += eta
	}
	return s, nil
}

// Center returns a copy of the slice with every row shifted to mean zero.
func Center(data [][]float64) [][]float64 {
	out := make([][]float64, len(data))
	for i, row := range data {
		n := len(row)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		mean := 0.0
		if n > 0 {
			mean = sum / float64(n)
		}
		out[i] = make([]float64, n)
		for t, v := range row {
			out[i][t] = v - mean
		}
	}
	return out
}
