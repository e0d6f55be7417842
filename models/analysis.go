package models

import (
	"netpath/domain/core"
	"netpath/domain/network"
	"netpath/domain/pathway"
)

// AnalysisRecord is the terminal artifact of one analysis run: the selected
// per-condition networks, the tuning tables that produced them, and the
// pathway results table. Records are immutable once produced.
type AnalysisRecord struct {
	ID         core.AnalysisID           `json:"id"`
	CreatedAt  core.Timestamp            `json:"created_at"`
	Method     string                    `json:"method"`
	Conditions []int                     `json:"conditions"`
	Networks   []*network.Network        `json:"networks,omitempty"`
	BICTables  map[int]network.BICTable  `json:"bic_tables,omitempty"`
	Selected   map[int]network.BICRecord `json:"selected,omitempty"`
	Results    *pathway.ResultTable      `json:"results"`
	Warnings   []string                  `json:"warnings,omitempty"`
}
