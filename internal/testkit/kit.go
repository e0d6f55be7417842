// Package testkit provides deterministic fixtures and in-memory fakes for
// exercising the estimation and enrichment pipeline without external data.
package testkit

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"netpath/domain/core"
	"netpath/domain/expr"
	"netpath/models"
	"netpath/ports"
)

// RNGAdapter hands out seeded streams. The name participates in the seed so
// two differently-named streams with the same base seed do not correlate.
type RNGAdapter struct{}

// NewRNGAdapter creates an RNG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation.
func (a *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	if _, err := h.Write([]byte(name)); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64()))), nil
}

var _ ports.RNGPort = (*RNGAdapter)(nil)

// ChainPrecision builds a tridiagonal precision matrix: unit diagonal and
// the given partial correlation on adjacent off-diagonals. The result is
// positive definite for |rho| < 0.5.
func ChainPrecision(p int, rho float64) [][]float64 {
	omega := make([][]float64, p)
	for i := range omega {
		omega[i] = make([]float64, p)
		omega[i][i] = 1
		if i > 0 {
			omega[i][i-1] = rho
		}
		if i < p-1 {
			omega[i][i+1] = rho
		}
	}
	return omega
}

// SampleMVN draws n samples from a zero-mean Gaussian with the given
// precision matrix, returned as a genes x samples slice.
func SampleMVN(rng *rand.Rand, omega [][]float64, n int) ([][]float64, error) {
	p := len(omega)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (omega[i][j]+omega[j][i])/2)
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, fmt.Errorf("precision matrix is not positive definite")
	}
	var sigma mat.SymDense
	if err := chol.InverseTo(&sigma); err != nil {
		return nil, err
	}
	var cholSigma mat.Cholesky
	if !cholSigma.Factorize(&sigma) {
		return nil, fmt.Errorf("implied covariance is not positive definite")
	}
	var l mat.TriDense
	cholSigma.LTo(&l)

	data := make([][]float64, p)
	for i := range data {
		data[i] = make([]float64, n)
	}
	z := make([]float64, p)
	for t := 0; t < n; t++ {
		for i := range z {
			z[i] = rng.NormFloat64()
		}
		for i := 0; i < p; i++ {
			acc := 0.0
			for k := 0; k <= i; k++ {
				acc += l.At(i, k) * z[k]
			}
			data[i][t] = acc
		}
	}
	return data, nil
}

// TwoConditionDataset simulates a two-condition expression matrix with the
// same precision structure in both conditions and an optional mean shift
// applied to the named gene indices in the second condition.
func TwoConditionDataset(rng *rand.Rand, omega [][]float64, nPerCond int, shift float64, shifted []int) (*expr.Matrix, expr.Labels, error) {
	p := len(omega)
	first, err := SampleMVN(rng, omega, nPerCond)
	if err != nil {
		return nil, nil, err
	}
	second, err := SampleMVN(rng, omega, nPerCond)
	if err != nil {
		return nil, nil, err
	}
	for _, i := range shifted {
		for t := range second[i] {
			second[i][t] += shift
		}
	}

	m := &expr.Matrix{
		Genes:   make([]string, p),
		Samples: make([]string, 2*nPerCond),
		Data:    make([][]float64, p),
	}
	labels := make(expr.Labels, 2*nPerCond)
	for i := 0; i < p; i++ {
		m.Genes[i] = fmt.Sprintf("g%d", i+1)
		m.Data[i] = append(append([]float64(nil), first[i]...), second[i]...)
	}
	for t := 0; t < 2*nPerCond; t++ {
		m.Samples[t] = fmt.Sprintf("s%d", t+1)
		if t < nPerCond {
			labels[t] = 1
		} else {
			labels[t] = 2
		}
	}
	return m, labels, nil
}

// MaxAbsDiff returns the largest absolute entrywise difference between two
// equally-shaped matrices.
func MaxAbsDiff(a, b [][]float64) float64 {
	worst := 0.0
	for i := range a {
		for j := range a[i] {
			if d := math.Abs(a[i][j] - b[i][j]); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// InMemoryAnalysisStore is a map-backed AnalysisRepository for tests and for
// runs without a configured database.
type InMemoryAnalysisStore struct {
	mu      sync.RWMutex
	records map[core.AnalysisID]*models.AnalysisRecord
}

// NewInMemoryAnalysisStore creates an empty store
func NewInMemoryAnalysisStore() *InMemoryAnalysisStore {
	return &InMemoryAnalysisStore{records: make(map[core.AnalysisID]*models.AnalysisRecord)}
}

// SaveAnalysis stores a record, replacing any previous version.
func (s *InMemoryAnalysisStore) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// GetAnalysis retrieves a record by id.
func (s *InMemoryAnalysisStore) GetAnalysis(ctx context.Context, id core.AnalysisID) (*models.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("analysis %s not found", id)
	}
	return record, nil
}

// ListAnalyses returns up to limit records, newest first.
func (s *InMemoryAnalysisStore) ListAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AnalysisRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time().After(out[j].CreatedAt.Time())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ ports.AnalysisRepository = (*InMemoryAnalysisStore)(nil)
