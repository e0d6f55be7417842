package ports

import (
	"context"

	"netpath/domain/expr"
	"netpath/domain/network"
	"netpath/domain/pathway"
)

// VarianceMethod selects the variance-component estimator used by the
// enrichment tester. The strategy is chosen explicitly at call time.
type VarianceMethod string

const (
	// VarianceMoments is the fast restricted moment-matching estimator,
	// suited to large gene/pathway counts.
	VarianceMoments VarianceMethod = "moments"
	// VarianceLikelihood is the full profile-likelihood estimator for
	// small problems.
	VarianceLikelihood VarianceMethod = "likelihood"
)

// EnrichmentRequest carries one estimated (or supplied) network per
// condition plus the expression data and pathway membership.
type EnrichmentRequest struct {
	Networks  []*network.Network // one per condition, ordered by ascending condition label
	Expr      *expr.Matrix
	Labels    expr.Labels
	Indicator *pathway.IndicatorMatrix
	Method    VarianceMethod
}

// EnrichmentTesterPort computes per-pathway differential-activity statistics.
type EnrichmentTesterPort interface {
	Run(ctx context.Context, req EnrichmentRequest) (*pathway.ResultTable, error)
}
