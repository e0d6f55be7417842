// Package report renders a completed analysis record as a markdown document
// and, for the web surface, as HTML.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"netpath/models"
)

// Generator renders analysis records
type Generator struct{}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Markdown renders the full report: run summary, per-condition network
// summaries with their tuning tables, and the pathway results sorted by
// ascending p-value.
func (g *Generator) Markdown(record *models.AnalysisRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pathway Enrichment Report\n\n")
	fmt.Fprintf(&b, "- Analysis: `%s`\n", record.ID)
	fmt.Fprintf(&b, "- Created: %s\n", record.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Variance method: %s\n", record.Method)
	fmt.Fprintf(&b, "- Conditions: %d\n\n", len(record.Conditions))

	for k, cond := range record.Conditions {
		fmt.Fprintf(&b, "## Condition %d network\n\n", cond)
		if k < len(record.Networks) && record.Networks[k] != nil {
			net := record.Networks[k]
			fmt.Fprintf(&b, "- Kind: %s\n", net.Kind)
			fmt.Fprintf(&b, "- Genes: %d\n", net.Size())
			fmt.Fprintf(&b, "- Edges: %d\n", net.EdgeCount())
		}
		if sel, ok := record.Selected[cond]; ok {
			fmt.Fprintf(&b, "- Selected lambda: %g (weight %g, BIC %.4f, df %d)\n", sel.Lambda, sel.Weight, sel.BIC, sel.DF)
		}
		b.WriteString("\n")
		if table, ok := record.BICTables[cond]; ok && len(table) > 0 {
			b.WriteString("| lambda | weight | BIC | df | error |\n")
			b.WriteString("|---|---|---|---|---|\n")
			for _, rec := range table {
				if rec.Err != "" {
					fmt.Fprintf(&b, "| %g | %g | — | — | %s |\n", rec.Lambda, rec.Weight, rec.Err)
					continue
				}
				fmt.Fprintf(&b, "| %g | %g | %.4f | %d | |\n", rec.Lambda, rec.Weight, rec.BIC, rec.DF)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Pathway results\n\n")
	if record.Results == nil || len(record.Results.Results) == 0 {
		b.WriteString("No pathway results.\n\n")
	} else {
		sorted := make([]int, len(record.Results.Results))
		for i := range sorted {
			sorted[i] = i
		}
		sort.Slice(sorted, func(a, c int) bool {
			return record.Results.Results[sorted[a]].PValue < record.Results.Results[sorted[c]].PValue
		})
		b.WriteString("| pathway | statistic | p-value | effect | direction | df |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, i := range sorted {
			res := record.Results.Results[i]
			fmt.Fprintf(&b, "| %s | %.4f | %.4g | %.4f | %s | %d |\n",
				res.Pathway, res.Statistic, res.PValue, res.Effect, res.Direction, res.DF)
		}
		b.WriteString("\n")
	}

	if len(record.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range record.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report to a standalone HTML fragment.
func (g *Generator) HTML(record *models.AnalysisRecord) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(g.Markdown(record)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
