package pathway

import (
	"fmt"

	"netpath/domain/core"
)

// IndicatorMatrix is a pathways x genes binary membership matrix. Column
// ordering must match the gene ordering of the analysis networks.
type IndicatorMatrix struct {
	Pathways []string `json:"pathways"`
	Genes    []string `json:"genes"`
	Rows     [][]int  `json:"rows"`
}

// PathwayCount returns the number of pathways (rows).
func (b *IndicatorMatrix) PathwayCount() int {
	return len(b.Pathways)
}

// Validate checks shape, binary entries, and column alignment with the
// analysis gene ordering. Alignment is exact: the column set must equal the
// network gene set, in the same order. A matrix covering only a subset of
// the genes is rejected; callers must pad it with zero columns for the
// missing genes before the analysis.
func (b *IndicatorMatrix) Validate(genes []string) error {
	if len(b.Rows) != len(b.Pathways) {
		return core.NewDimensionError("indicator matrix rows", len(b.Rows), len(b.Pathways))
	}
	if len(b.Genes) != len(genes) {
		return core.NewDimensionError("indicator matrix gene columns", len(b.Genes), len(genes))
	}
	for i, g := range genes {
		if b.Genes[i] != g {
			return fmt.Errorf("%w: indicator column %d is %q, networks have %q", core.ErrDimension, i, b.Genes[i], g)
		}
	}
	for i, row := range b.Rows {
		if len(row) != len(genes) {
			return core.NewDimensionError(fmt.Sprintf("indicator row %q", b.Pathways[i]), len(row), len(genes))
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return fmt.Errorf("%w: indicator entry (%d,%d) is %d, want 0 or 1", core.ErrDimension, i, j, v)
			}
		}
	}
	return nil
}

// Direction of a pathway-level effect across conditions.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// EnrichmentResult is one row of the terminal results table.
type EnrichmentResult struct {
	Pathway   string    `json:"pathway"`
	Statistic float64   `json:"statistic"`
	PValue    float64   `json:"p_value"`
	Effect    float64   `json:"effect"`
	Direction Direction `json:"direction"`
	DF        int       `json:"df"`
	Method    string    `json:"method"`
}

// ResultTable is the terminal artifact of one test call, one row per pathway.
type ResultTable struct {
	Results  []EnrichmentResult `json:"results"`
	Warnings []string           `json:"warnings,omitempty"`
}
