package pathway

import (
	"testing"

	"netpath/domain/core"
)

func TestIndicatorValidate(t *testing.T) {
	genes := []string{"g1", "g2", "g3"}

	b := &IndicatorMatrix{
		Pathways: []string{"pw1"},
		Genes:    []string{"g1", "g2", "g3"},
		Rows:     [][]int{{1, 0, 1}},
	}
	if err := b.Validate(genes); err != nil {
		t.Fatalf("valid indicator rejected: %v", err)
	}

	// Alignment is exact: a subset of the gene columns is not accepted.
	subset := &IndicatorMatrix{
		Pathways: []string{"pw1"},
		Genes:    []string{"g1", "g2"},
		Rows:     [][]int{{1, 0}},
	}
	if err := subset.Validate(genes); !core.IsDimensionError(err) {
		t.Errorf("subset gene columns must be rejected, got %v", err)
	}

	misordered := &IndicatorMatrix{
		Pathways: []string{"pw1"},
		Genes:    []string{"g2", "g1", "g3"},
		Rows:     [][]int{{1, 0, 1}},
	}
	if err := misordered.Validate(genes); !core.IsDimensionError(err) {
		t.Errorf("misordered gene columns must be rejected, got %v", err)
	}

	nonbinary := &IndicatorMatrix{
		Pathways: []string{"pw1"},
		Genes:    []string{"g1", "g2", "g3"},
		Rows:     [][]int{{1, 2, 0}},
	}
	if err := nonbinary.Validate(genes); !core.IsDimensionError(err) {
		t.Errorf("non-binary entry must be rejected, got %v", err)
	}
}
