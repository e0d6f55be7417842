package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"netpath/domain/core"
	"netpath/domain/expr"
	"netpath/domain/network"
	"netpath/domain/pathway"
	"netpath/internal"
	"netpath/internal/profiling"
	"netpath/models"
	"netpath/ports"
)

// AnalysisRequest carries everything one analysis run needs: the expression
// data, condition labels, pathway membership, structural constraints, and the
// tuning grid. Directed selects the ordered-regression estimator with a
// single penalty instead of the grid-tuned undirected one.
type AnalysisRequest struct {
	Expr      *expr.Matrix
	Labels    expr.Labels
	Indicator *pathway.IndicatorMatrix
	Zero      network.Mask
	One       network.Mask
	Directed  bool
	Lambdas   []float64 // undirected tuning grid
	Weights   []float64 // optional known-edge penalty weights
	Lambda    float64   // directed penalty
	Eta       float64
	Eps       float64
	Method    ports.VarianceMethod
}

// AnalysisService orchestrates one full run: pre-flight profiling, one
// network estimation per condition in parallel, then pathway enrichment over
// the per-condition networks.
type AnalysisService struct {
	tuner    ports.TuningSelectorPort
	directed ports.DirectedEstimatorPort
	tester   ports.EnrichmentTesterPort
	repo     ports.AnalysisRepository
	profiler *profiling.Profiler
	logger   *internal.Logger
}

// NewAnalysisService wires the estimation ports together. The repository may
// be nil, in which case results are returned but not persisted.
func NewAnalysisService(
	tuner ports.TuningSelectorPort,
	directed ports.DirectedEstimatorPort,
	tester ports.EnrichmentTesterPort,
	repo ports.AnalysisRepository,
	logger *internal.Logger,
) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		tuner:    tuner,
		directed: directed,
		tester:   tester,
		repo:     repo,
		profiler: profiling.NewProfiler(),
		logger:   logger,
	}
}

// conditionFit is one condition's estimation outcome.
type conditionFit struct {
	fit      *network.Fit
	table    network.BICTable
	selected network.BICRecord
	hasTable bool
}

// Run executes the full pipeline and returns the immutable analysis record.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*models.AnalysisRecord, error) {
	if req.Expr == nil || req.Indicator == nil {
		return nil, fmt.Errorf("%w: expression matrix and indicator matrix are required", core.ErrDimension)
	}
	if err := req.Expr.Validate(); err != nil {
		return nil, err
	}
	if err := req.Labels.Validate(req.Expr.SampleCount()); err != nil {
		return nil, err
	}
	if err := req.Indicator.Validate(req.Expr.Genes); err != nil {
		return nil, err
	}

	var warnings []string
	report, err := s.profiler.Profile(req.Expr)
	if err != nil {
		return nil, err
	}
	for _, w := range report.Warnings {
		s.logger.Warn("profiling: %s", w)
	}
	warnings = append(warnings, report.Warnings...)

	conds := req.Labels.Conditions()
	s.logger.Info("analysis: %d genes, %d samples, %d conditions, directed=%t",
		req.Expr.GeneCount(), req.Expr.SampleCount(), len(conds), req.Directed)

	fits := make([]conditionFit, len(conds))
	g, gctx := errgroup.WithContext(ctx)
	for k, cond := range conds {
		k, cond := k, cond
		g.Go(func() error {
			idx := req.Labels.Indices(cond)
			sub := req.Expr.Columns(idx)
			fit, err := s.estimateCondition(gctx, req, sub, &fits[k])
			if err != nil {
				return fmt.Errorf("condition %d: %w", cond, err)
			}
			fits[k].fit = fit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	networks := make([]*network.Network, len(conds))
	tables := make(map[int]network.BICTable)
	selected := make(map[int]network.BICRecord)
	for k, cond := range conds {
		networks[k] = fits[k].fit.Network
		for _, w := range fits[k].fit.Warnings {
			warnings = append(warnings, fmt.Sprintf("condition %d: %s", cond, w))
		}
		if fits[k].hasTable {
			tables[cond] = fits[k].table
			selected[cond] = fits[k].selected
		}
	}

	results, err := s.tester.Run(ctx, ports.EnrichmentRequest{
		Networks:  networks,
		Expr:      req.Expr,
		Labels:    req.Labels,
		Indicator: req.Indicator,
		Method:    req.Method,
	})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, results.Warnings...)

	method := req.Method
	if method == "" {
		method = ports.VarianceMoments
	}
	record := &models.AnalysisRecord{
		ID:         core.AnalysisID(core.NewID()),
		CreatedAt:  core.Now(),
		Method:     string(method),
		Conditions: conds,
		Networks:   networks,
		BICTables:  tables,
		Selected:   selected,
		Results:    results,
		Warnings:   warnings,
	}

	if s.repo != nil {
		if err := s.repo.SaveAnalysis(ctx, record); err != nil {
			// The analysis itself succeeded; surface persistence failure
			// as a warning rather than discarding the results.
			s.logger.Error("persisting analysis %s: %v", record.ID, err)
			record.Warnings = append(record.Warnings, fmt.Sprintf("persistence failed: %v", err))
		} else {
			s.logger.Info("analysis %s persisted", record.ID)
		}
	}
	return record, nil
}

// estimateCondition runs either the grid-tuned undirected estimator or the
// single-penalty directed estimator on one condition's data slice.
func (s *AnalysisService) estimateCondition(ctx context.Context, req AnalysisRequest, sub [][]float64, out *conditionFit) (*network.Fit, error) {
	if req.Directed {
		return s.directed.Estimate(ctx, ports.DirectedRequest{
			Data:   sub,
			Mask:   req.One,
			Genes:  req.Expr.Genes,
			Lambda: req.Lambda,
			Eta:    req.Eta,
			Eps:    req.Eps,
		})
	}
	result, err := s.tuner.Select(ctx, ports.TuningRequest{
		Data:    sub,
		Zero:    req.Zero,
		One:     req.One,
		Genes:   req.Expr.Genes,
		Lambdas: req.Lambdas,
		Weights: req.Weights,
		Eta:     req.Eta,
		Eps:     req.Eps,
	})
	if err != nil {
		return nil, err
	}
	out.table = result.Table
	out.selected = network.BICRecord{Lambda: result.Lambda, Weight: result.Weight}
	if i := result.Table.Best(); i >= 0 {
		out.selected = result.Table[i]
	}
	out.hasTable = true
	fit := result.Fit
	fit.Warnings = append(fit.Warnings, result.Warnings...)
	return fit, nil
}
