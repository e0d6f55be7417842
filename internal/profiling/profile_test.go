package profiling

import (
	"math"
	"testing"

	"netpath/domain/expr"
)

func TestProfileSummaries(t *testing.T) {
	m := &expr.Matrix{
		Genes:   []string{"g1", "g2"},
		Samples: []string{"s1", "s2", "s3", "s4"},
		Data: [][]float64{
			{1, 2, 3, 4},
			{5, 5, 5, 5},
		},
	}
	report, err := NewProfiler().Profile(m)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if len(report.Profiles) != 2 {
		t.Fatalf("want 2 profiles, got %d", len(report.Profiles))
	}

	g1 := report.Profiles[0]
	if math.Abs(g1.Mean-2.5) > 1e-12 || g1.Min != 1 || g1.Max != 4 {
		t.Errorf("unexpected summary for g1: %+v", g1)
	}
	if g1.NearConstant {
		t.Error("g1 has real spread and must not be flagged")
	}

	g2 := report.Profiles[1]
	if !g2.NearConstant {
		t.Error("constant gene g2 must be flagged near-constant")
	}
	if len(report.Warnings) != 1 {
		t.Errorf("want exactly one warning, got %v", report.Warnings)
	}
}

func TestProfileRejectsInvalidMatrix(t *testing.T) {
	m := &expr.Matrix{Genes: []string{"g1"}, Samples: []string{"s1"}, Data: [][]float64{{1, 2}}}
	if _, err := NewProfiler().Profile(m); err == nil {
		t.Error("expected ragged matrix to be rejected")
	}
}
