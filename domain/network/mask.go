package network

import (
	"fmt"

	"netpath/domain/core"
)

// Mask is a genes x genes binary constraint matrix. A zero-mask entry of 1
// forbids an edge; a one-mask entry of 1 marks an edge as known. The two
// masks for one estimation must be disjoint.
type Mask [][]int

// NewMask allocates an all-zero p x p mask.
func NewMask(p int) Mask {
	m := make(Mask, p)
	for i := range m {
		m[i] = make([]int, p)
	}
	return m
}

// Size returns the mask dimension.
func (m Mask) Size() int {
	return len(m)
}

// Has reports whether entry (i,j) is set.
func (m Mask) Has(i, j int) bool {
	return m[i][j] != 0
}

// Validate checks that the mask is square with the expected dimension and
// contains only 0/1 entries.
func (m Mask) Validate(p int) error {
	if len(m) != p {
		return core.NewDimensionError("constraint mask rows", len(m), p)
	}
	for i, row := range m {
		if len(row) != p {
			return core.NewDimensionError(fmt.Sprintf("constraint mask row %d", i), len(row), p)
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return fmt.Errorf("%w: mask entry (%d,%d) is %d, want 0 or 1", core.ErrConstraintConflict, i, j, v)
			}
		}
	}
	return nil
}

// ValidateSymmetric checks squareness plus symmetry, as required for
// undirected constraint masks.
func (m Mask) ValidateSymmetric(p int) error {
	if err := m.Validate(p); err != nil {
		return err
	}
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			if m[i][j] != m[j][i] {
				return core.NewConstraintConflictError("mask is not symmetric", i, j)
			}
		}
	}
	return nil
}

// Disjoint checks that no entry is set in both masks. Overlap is a
// configuration error: an edge cannot be both forced and forbidden.
func Disjoint(zero, one Mask) error {
	if zero == nil || one == nil {
		return nil
	}
	for i := range zero {
		for j := range zero[i] {
			if zero[i][j] != 0 && one[i][j] != 0 {
				return core.NewConstraintConflictError("entry is both forbidden and known", i, j)
			}
		}
	}
	return nil
}

// ValidateOrdered checks a directed mask against the declared topological
// order: genes are already reordered ancestor-first, so every edge must point
// from a lower to a strictly higher index.
func (m Mask) ValidateOrdered(p int) error {
	if err := m.Validate(p); err != nil {
		return err
	}
	for i := 0; i < p; i++ {
		for j := 0; j <= i && j < p; j++ {
			if m[i][j] != 0 {
				return core.NewOrderingError(i, j)
			}
		}
	}
	return nil
}
