package ports

import (
	"netpath/domain/expr"
	"netpath/domain/network"
	"netpath/domain/pathway"
)

// DatasetReaderPort loads the analysis inputs from caller-managed files.
// Construction of these entities from raw pathway catalogs is external;
// readers only parse fully formed matrices.
type DatasetReaderPort interface {
	// ReadExpression reads a genes x samples matrix with gene row labels
	// and sample column headers.
	ReadExpression(path string) (*expr.Matrix, error)

	// ReadLabels reads the per-sample condition labels, aligned to the
	// expression sample ordering.
	ReadLabels(path string, samples []string) (expr.Labels, error)

	// ReadIndicator reads the pathways x genes membership matrix.
	ReadIndicator(path string, genes []string) (*pathway.IndicatorMatrix, error)

	// ReadMask reads a genes x genes binary constraint mask.
	ReadMask(path string, genes []string) (network.Mask, error)
}
