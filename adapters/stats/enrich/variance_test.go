package enrich

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/internal/testkit"
)

// syntheticResiduals draws resid = sqrt(sigmaG)*latent + sqrt(sigmaE)*noise
// where latent has covariance G = Omega^-1.
func syntheticResiduals(t *testing.T, rng *rand.Rand, omega [][]float64, n int, sigmaG, sigmaE float64) ([][]float64, *mat.Dense) {
	t.Helper()
	latent, err := testkit.SampleMVN(rng, omega, n)
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}
	p := len(omega)
	resid := make([][]float64, p)
	for i := range resid {
		resid[i] = make([]float64, n)
		for s := 0; s < n; s++ {
			resid[i][s] = math.Sqrt(sigmaG)*latent[i][s] + math.Sqrt(sigmaE)*rng.NormFloat64()
		}
	}

	lam, err := Influence(chainNetwork(p, omega[0][1]))
	if err != nil {
		t.Fatalf("influence: %v", err)
	}
	var g mat.Dense
	g.Mul(lam, lam.T())
	return resid, &g
}

func TestMomentComponentsRecovery(t *testing.T) {
	rng := rand.New(rand.NewSource(67))
	omega := testkit.ChainPrecision(4, -0.3)
	resid, g := syntheticResiduals(t, rng, omega, 3000, 2.0, 0.5)

	comps, err := momentComponents(resid, g)
	if err != nil {
		t.Fatalf("momentComponents failed: %v", err)
	}
	if math.Abs(comps.SigmaG-2.0) > 0.5 {
		t.Errorf("sigmaG %g, want near 2.0", comps.SigmaG)
	}
	if math.Abs(comps.SigmaE-0.5) > 0.4 {
		t.Errorf("sigmaE %g, want near 0.5", comps.SigmaE)
	}
}

func TestMomentComponentsDegenerateSystem(t *testing.T) {
	// With G = I the two moment equations are collinear and the 2x2 trace
	// system is singular.
	rng := rand.New(rand.NewSource(71))
	omega := testkit.ChainPrecision(3, 0)
	resid, err := testkit.SampleMVN(rng, omega, 50)
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}
	g := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		g.Set(i, i, 1)
	}
	if _, err := momentComponents(resid, g); !core.IsDegenerateVarianceError(err) {
		t.Errorf("expected degenerate variance error, got %v", err)
	}
}

func TestLikelihoodComponentsRecovery(t *testing.T) {
	rng := rand.New(rand.NewSource(73))
	omega := testkit.ChainPrecision(4, -0.3)
	resid, g := syntheticResiduals(t, rng, omega, 3000, 2.0, 0.5)

	comps, err := likelihoodComponents(resid, g)
	if err != nil {
		t.Fatalf("likelihoodComponents failed: %v", err)
	}
	if math.Abs(comps.SigmaG-2.0) > 0.6 {
		t.Errorf("sigmaG %g, want near 2.0", comps.SigmaG)
	}
	if math.Abs(comps.SigmaE-0.5) > 0.4 {
		t.Errorf("sigmaE %g, want near 0.5", comps.SigmaE)
	}
}

func TestInfluenceUndirected(t *testing.T) {
	omega := [][]float64{{1, -0.3}, {-0.3, 1}}
	net := &network.Network{
		Kind:      network.Undirected,
		Genes:     []string{"a", "b"},
		Weights:   omega,
		Adjacency: [][]int{{0, 1}, {1, 0}},
	}
	lam, err := Influence(net)
	if err != nil {
		t.Fatalf("Influence failed: %v", err)
	}
	var got mat.Dense
	got.Mul(lam, lam.T())

	// Lambda*Lambda' must equal Omega^-1.
	det := 1 - 0.09
	want := [][]float64{{1 / det, 0.3 / det}, {0.3 / det, 1 / det}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(got.At(i, j)-want[i][j]) > 1e-10 {
				t.Errorf("covariance (%d,%d): got %g, want %g", i, j, got.At(i, j), want[i][j])
			}
		}
	}
}

func TestInfluenceDirected(t *testing.T) {
	weights := [][]float64{{0, 0.8}, {0, 0}}
	net := &network.Network{
		Kind:      network.Directed,
		Genes:     []string{"a", "b"},
		Weights:   weights,
		Adjacency: [][]int{{0, 1}, {0, 0}},
	}
	lam, err := Influence(net)
	if err != nil {
		t.Fatalf("Influence failed: %v", err)
	}
	// (I - A')^-1 for a single edge a->b is lower triangular with the edge
	// weight below the diagonal.
	want := [][]float64{{1, 0}, {0.8, 1}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(lam.At(i, j)-want[i][j]) > 1e-12 {
				t.Errorf("lambda (%d,%d): got %g, want %g", i, j, lam.At(i, j), want[i][j])
			}
		}
	}
}

func TestInfluenceRejectsIndefiniteOmega(t *testing.T) {
	net := &network.Network{
		Kind:      network.Undirected,
		Genes:     []string{"a", "b"},
		Weights:   [][]float64{{1, 2}, {2, 1}},
		Adjacency: [][]int{{0, 1}, {1, 0}},
	}
	if _, err := Influence(net); !core.IsDegenerateVarianceError(err) {
		t.Errorf("expected degenerate variance error for indefinite omega, got %v", err)
	}
}
