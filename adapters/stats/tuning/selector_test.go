package tuning

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"netpath/adapters/stats/covariance"
	"netpath/adapters/stats/glasso"
	"netpath/domain/network"
	"netpath/internal/testkit"
	"netpath/ports"
)

func chainData(t *testing.T, seed int64, p, n int, rho float64) [][]float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data, err := testkit.SampleMVN(rng, testkit.ChainPrecision(p, rho), n)
	if err != nil {
		t.Fatalf("sampling chain data: %v", err)
	}
	return data
}

func TestSelectSinglePoint(t *testing.T) {
	data := chainData(t, 4, 4, 200, -0.4)
	sel := NewSelector(glasso.New())

	res, err := sel.Select(context.Background(), ports.TuningRequest{
		Data:    data,
		Lambdas: []float64{0.1},
		Eps:     1e-6,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(res.Table) != 1 {
		t.Fatalf("want 1 grid row, got %d", len(res.Table))
	}
	if res.Lambda != 0.1 || res.Weight != 0 {
		t.Errorf("want selected (0.1, 0), got (%g, %g)", res.Lambda, res.Weight)
	}
	if res.Fit == nil || res.Fit.Network == nil {
		t.Fatal("selected fit missing")
	}
}

func TestSelectPicksMinimumBIC(t *testing.T) {
	data := chainData(t, 8, 5, 300, -0.4)
	sel := NewSelector(glasso.New())

	res, err := sel.Select(context.Background(), ports.TuningRequest{
		Data:    data,
		Lambdas: []float64{0.05, 0.1, 0.2, 0.5, 2.0},
		Eps:     1e-6,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(res.Table) != 5 {
		t.Fatalf("want 5 grid rows, got %d", len(res.Table))
	}
	best := res.Table.Best()
	if best == -1 {
		t.Fatal("no grid point succeeded")
	}
	for _, rec := range res.Table {
		if rec.Err != "" {
			continue
		}
		if rec.BIC < res.Table[best].BIC {
			t.Errorf("record (lambda=%g) has BIC %g below the selected %g", rec.Lambda, rec.BIC, res.Table[best].BIC)
		}
	}
	if res.Lambda != res.Table[best].Lambda {
		t.Errorf("result lambda %g disagrees with best table row %g", res.Lambda, res.Table[best].Lambda)
	}
}

func TestSelectBICMatchesRecomputation(t *testing.T) {
	data := chainData(t, 15, 4, 250, -0.4)
	sel := NewSelector(glasso.New())

	res, err := sel.Select(context.Background(), ports.TuningRequest{
		Data:    data,
		Lambdas: []float64{0.1, 0.3},
		Eps:     1e-6,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	s, err := covariance.Build(data, 0)
	if err != nil {
		t.Fatalf("covariance: %v", err)
	}
	best := res.Table.Best()
	rec := res.Table[best]
	want := BIC(s, res.Fit.Omega, len(data[0]), rec.DF)
	if math.Abs(want-rec.BIC) > 1e-9 {
		t.Errorf("recorded BIC %g, recomputed %g", rec.BIC, want)
	}
	if rec.DF != res.Fit.Network.EdgeCount() {
		t.Errorf("recorded df %d, network has %d edges", rec.DF, res.Fit.Network.EdgeCount())
	}
}

func TestSelectEmptyGrid(t *testing.T) {
	data := chainData(t, 2, 3, 50, -0.3)
	sel := NewSelector(glasso.New())
	if _, err := sel.Select(context.Background(), ports.TuningRequest{Data: data}); err == nil {
		t.Error("expected empty lambda grid to be rejected")
	}
}

func TestSelectWeightGrid(t *testing.T) {
	data := chainData(t, 6, 4, 200, -0.4)
	one := network.NewMask(4)
	one[0][1], one[1][0] = 1, 1

	sel := NewSelector(glasso.New())
	res, err := sel.Select(context.Background(), ports.TuningRequest{
		Data:    data,
		One:     one,
		Lambdas: []float64{0.1, 0.3},
		Weights: []float64{0, 0.5, 1},
		Eps:     1e-6,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(res.Table) != 6 {
		t.Fatalf("want 2x3 grid, got %d rows", len(res.Table))
	}
	seen := make(map[[2]float64]bool)
	for _, rec := range res.Table {
		seen[[2]float64{rec.Lambda, rec.Weight}] = true
	}
	if len(seen) != 6 {
		t.Errorf("grid rows are not unique: %v", seen)
	}
}

func TestSelectDegenerateGridWarning(t *testing.T) {
	data := chainData(t, 10, 4, 100, -0.3)
	sel := NewSelector(glasso.New())

	// Penalties this large shrink every entry below eps.
	res, err := sel.Select(context.Background(), ports.TuningRequest{
		Data:    data,
		Lambdas: []float64{50, 100},
		Eps:     1e-6,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("all-degenerate grid must raise a warning")
	}
}

func TestBICDFPenalty(t *testing.T) {
	// Identical matrices, different df: BIC must differ exactly by the
	// sample-size penalty times the df difference.
	omega := [][]float64{{1, 0}, {0, 1}}
	s := [][]float64{{1, 0}, {0, 1}}
	n := 100
	b0 := BIC(s, omega, n, 0)
	b3 := BIC(s, omega, n, 3)
	wantGap := math.Log(float64(n)) / float64(n) * 3
	if math.Abs((b3-b0)-wantGap) > 1e-12 {
		t.Errorf("df penalty gap %g, want %g", b3-b0, wantGap)
	}
}
