package expr

import (
	"fmt"
	"sort"

	"netpath/domain/core"
)

// Matrix is a genes x samples expression matrix on the log scale.
// Gene ordering is the single source of truth for an analysis: every other
// matrix (masks, networks, pathway indicator) must follow it unchanged.
type Matrix struct {
	Genes   []string    `json:"genes"`
	Samples []string    `json:"samples"`
	Data    [][]float64 `json:"data"` // rows = genes, columns = samples
}

// GeneCount returns the number of genes (rows)
func (m *Matrix) GeneCount() int {
	return len(m.Genes)
}

// SampleCount returns the number of samples (columns)
func (m *Matrix) SampleCount() int {
	return len(m.Samples)
}

// Validate checks internal consistency: unique gene and sample identifiers
// and a rectangular data block matching the label counts.
func (m *Matrix) Validate() error {
	if len(m.Genes) == 0 {
		return core.NewDimensionError("expression matrix genes", 0, 1)
	}
	if len(m.Data) != len(m.Genes) {
		return core.NewDimensionError("expression matrix rows", len(m.Data), len(m.Genes))
	}
	seen := make(map[string]struct{}, len(m.Genes))
	for _, g := range m.Genes {
		if g == "" {
			return fmt.Errorf("%w: empty gene identifier", core.ErrDimension)
		}
		if _, dup := seen[g]; dup {
			return fmt.Errorf("%w: duplicate gene identifier %q", core.ErrDimension, g)
		}
		seen[g] = struct{}{}
	}
	n := len(m.Samples)
	for i, row := range m.Data {
		if len(row) != n {
			return core.NewDimensionError(fmt.Sprintf("expression row %q", m.Genes[i]), len(row), n)
		}
	}
	sseen := make(map[string]struct{}, n)
	for _, s := range m.Samples {
		if _, dup := sseen[s]; dup {
			return fmt.Errorf("%w: duplicate sample identifier %q", core.ErrDimension, s)
		}
		sseen[s] = struct{}{}
	}
	return nil
}

// Columns copies the columns at the given indices into a fresh
// genes x len(idx) slice.
func (m *Matrix) Columns(idx []int) [][]float64 {
	out := make([][]float64, len(m.Data))
	for i, row := range m.Data {
		out[i] = make([]float64, len(idx))
		for k, j := range idx {
			out[i][k] = row[j]
		}
	}
	return out
}

// PermuteGenes returns a copy of the matrix with rows reordered so that
// row i of the result is row perm[i] of the original.
func (m *Matrix) PermuteGenes(perm []int) (*Matrix, error) {
	if len(perm) != len(m.Genes) {
		return nil, core.NewDimensionError("gene permutation", len(perm), len(m.Genes))
	}
	out := &Matrix{
		Genes:   make([]string, len(m.Genes)),
		Samples: append([]string(nil), m.Samples...),
		Data:    make([][]float64, len(m.Data)),
	}
	for i, src := range perm {
		if src < 0 || src >= len(m.Genes) {
			return nil, fmt.Errorf("%w: permutation index %d out of range", core.ErrDimension, src)
		}
		out.Genes[i] = m.Genes[src]
		out.Data[i] = append([]float64(nil), m.Data[src]...)
	}
	return out, nil
}

// Labels assigns each sample to a condition. Values are small positive
// integers; two or more conditions are supported.
type Labels []int

// Conditions returns the distinct condition values in ascending order.
func (l Labels) Conditions() []int {
	set := make(map[int]struct{})
	for _, v := range l {
		set[v] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Indices returns the sample indices belonging to the given condition.
func (l Labels) Indices(condition int) []int {
	var idx []int
	for i, v := range l {
		if v == condition {
			idx = append(idx, i)
		}
	}
	return idx
}

// Validate checks that the labels match the sample count, describe at least
// two conditions, and give every condition at least two samples (the
// covariance of a single sample is undefined).
func (l Labels) Validate(sampleCount int) error {
	if len(l) != sampleCount {
		return core.NewDimensionError("condition labels", len(l), sampleCount)
	}
	counts := make(map[int]int)
	for i, v := range l {
		if v < 1 {
			return fmt.Errorf("%w: label %d at sample %d is not a positive condition", core.ErrDimension, v, i)
		}
		counts[v]++
	}
	if len(counts) < 2 {
		return fmt.Errorf("%w: need at least 2 conditions, have %d", core.ErrDimension, len(counts))
	}
	for cond, c := range counts {
		if c < 2 {
			return fmt.Errorf("%w: condition %d has %d samples, need at least 2", core.ErrDimension, cond, c)
		}
	}
	return nil
}
