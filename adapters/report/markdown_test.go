package report

import (
	"strings"
	"testing"

	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/domain/pathway"
	"netpath/models"
)

func sampleRecord() *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:         core.AnalysisID(core.NewID()),
		CreatedAt:  core.Now(),
		Method:     "moments",
		Conditions: []int{1, 2},
		Networks: []*network.Network{
			{
				Kind:      network.Undirected,
				Genes:     []string{"g1", "g2"},
				Weights:   [][]float64{{1, -0.3}, {-0.3, 1}},
				Adjacency: [][]int{{0, 1}, {1, 0}},
			},
			{
				Kind:      network.Undirected,
				Genes:     []string{"g1", "g2"},
				Weights:   [][]float64{{1, 0}, {0, 1}},
				Adjacency: [][]int{{0, 0}, {0, 0}},
			},
		},
		BICTables: map[int]network.BICTable{
			1: {{Lambda: 0.1, BIC: 2.5, DF: 1}, {Lambda: 0.5, BIC: 3.1, DF: 0}},
		},
		Selected: map[int]network.BICRecord{
			1: {Lambda: 0.1, BIC: 2.5, DF: 1},
		},
		Results: &pathway.ResultTable{
			Results: []pathway.EnrichmentResult{
				{Pathway: "pwB", Statistic: 1.1, PValue: 0.27, Effect: 0.4, Direction: pathway.DirectionUp, DF: 1, Method: "moments"},
				{Pathway: "pwA", Statistic: 3.2, PValue: 0.001, Effect: 1.9, Direction: pathway.DirectionUp, DF: 1, Method: "moments"},
			},
		},
		Warnings: []string{"condition 2: degenerate fit: network has no edges (lambda=0.5, eps=1e-06)"},
	}
}

func TestMarkdownContent(t *testing.T) {
	md := NewGenerator().Markdown(sampleRecord())

	for _, want := range []string{
		"# Pathway Enrichment Report",
		"## Condition 1 network",
		"## Condition 2 network",
		"Selected lambda: 0.1",
		"pwA",
		"pwB",
		"## Warnings",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Results are ordered by ascending p-value.
	if strings.Index(md, "pwA") > strings.Index(md, "pwB") {
		t.Error("results not sorted by p-value")
	}
}

func TestMarkdownEmptyResults(t *testing.T) {
	rec := sampleRecord()
	rec.Results = nil
	md := NewGenerator().Markdown(rec)
	if !strings.Contains(md, "No pathway results.") {
		t.Error("empty results should be stated explicitly")
	}
}

func TestHTMLRendering(t *testing.T) {
	out := string(NewGenerator().HTML(sampleRecord()))
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<table>") {
		t.Errorf("expected rendered headings and tables, got: %.200s", out)
	}
}
