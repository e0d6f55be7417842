package network

import (
	"math"

	"netpath/domain/core"
)

// Kind declares whether a network is undirected or directed. Callers state
// this explicitly; it is never inferred from the edges themselves.
type Kind string

const (
	Undirected Kind = "undirected"
	Directed   Kind = "directed"
)

// Network is a genes x genes weighted adjacency matrix for one condition.
// Undirected networks are symmetric; directed networks are strictly
// upper-triangular in the declared topological order.
type Network struct {
	Kind      Kind        `json:"kind"`
	Genes     []string    `json:"genes"`
	Weights   [][]float64 `json:"weights"`
	Adjacency [][]int     `json:"adjacency"`
}

// Size returns the gene dimension.
func (n *Network) Size() int {
	return len(n.Genes)
}

// EdgeCount counts edges: each undirected edge once, each directed edge once.
func (n *Network) EdgeCount() int {
	count := 0
	for i := range n.Adjacency {
		for j := range n.Adjacency[i] {
			if i == j || n.Adjacency[i][j] == 0 {
				continue
			}
			if n.Kind == Undirected && j < i {
				continue
			}
			count++
		}
	}
	return count
}

// IsSymmetric reports whether the weight matrix is symmetric to the given
// floating-point tolerance.
func (n *Network) IsSymmetric(tol float64) bool {
	p := len(n.Weights)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			if math.Abs(n.Weights[i][j]-n.Weights[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

// Validate checks the network against an expected gene ordering.
func (n *Network) Validate(genes []string) error {
	if len(n.Genes) != len(genes) {
		return core.NewDimensionError("network genes", len(n.Genes), len(genes))
	}
	for i, g := range genes {
		if n.Genes[i] != g {
			return core.NewDimensionError("network gene ordering diverges at index", i, i)
		}
	}
	if len(n.Weights) != len(genes) {
		return core.NewDimensionError("network weight rows", len(n.Weights), len(genes))
	}
	return nil
}

// Fit is the immutable result of one estimation call: the estimated network,
// the weighted precision matrix (undirected only), and any warnings raised
// during fitting. Warnings are carried on the value so they stay retrievable
// on otherwise-successful calls.
type Fit struct {
	Network  *Network    `json:"network"`
	Omega    [][]float64 `json:"omega,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Degenerate reports whether the fit collapsed to an edgeless network.
func (f *Fit) Degenerate() bool {
	return f.Network != nil && f.Network.EdgeCount() == 0
}
