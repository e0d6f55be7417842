// Package enrich tests predefined gene pathways for differential activity
// between conditions, propagating perturbation effects along each
// condition's estimated network rather than treating genes in isolation.
package enrich

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"netpath/domain/core"
	"netpath/domain/pathway"
	"netpath/ports"
)

// Tester consumes one network per condition plus expression data and the
// pathway indicator matrix, and produces one result row per pathway.
type Tester struct{}

// NewTester creates an enrichment tester.
func NewTester() *Tester {
	return &Tester{}
}

// conditionStats caches the per-condition quantities every pathway shares.
type conditionStats struct {
	n     int
	means []float64
	covG  *mat.Dense // Lambda * Lambda'
	comps Components
}

// Run validates all inputs eagerly, estimates variance components once per
// condition with the requested strategy, then scores every pathway. Two
// conditions yield a Wald z statistic against the normal reference; more
// conditions yield a precision-weighted omnibus statistic against chi-square
// with (conditions - 1) degrees of freedom.
func (t *Tester) Run(ctx context.Context, req ports.EnrichmentRequest) (*pathway.ResultTable, error) {
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
	conds := req.Labels.Conditions()
	if len(req.Networks) != len(conds) {
		return nil, core.NewDimensionError("per-condition networks", len(req.Networks), len(conds))
	}
	method := req.Method
	if method == "" {
		method = ports.VarianceMoments
	}
	if method != ports.VarianceMoments && method != ports.VarianceLikelihood {
		return nil, fmt.Errorf("%w: unknown variance method %q", core.ErrDimension, method)
	}

	p := req.Expr.GeneCount()
	stats := make([]conditionStats, len(conds))
	for k, cond := range conds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		net := req.Networks[k]
		if net == nil {
			return nil, fmt.Errorf("%w: network for condition %d is missing", core.ErrDimension, cond)
		}
		if err := net.Validate(req.Expr.Genes); err != nil {
			return nil, fmt.Errorf("condition %d: %w", cond, err)
		}

		idx := req.Labels.Indices(cond)
		sub := req.Expr.Columns(idx)
		means := make([]float64, p)
		for i := range sub {
			sum := 0.0
			for _, v := range sub[i] {
				sum += v
			}
			means[i] = sum / float64(len(idx))
		}
		resid := make([][]float64, p)
		for i := range sub {
			resid[i] = make([]float64, len(idx))
			for s, v := range sub[i] {
				resid[i][s] = v - means[i]
			}
		}

		lam, err := Influence(net)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", cond, err)
		}
		var covG mat.Dense
		covG.Mul(lam, lam.T())

		var comps Components
		if method == ports.VarianceMoments {
			comps, err = momentComponents(resid, &covG)
		} else {
			comps, err = likelihoodComponents(resid, &covG)
		}
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", cond, err)
		}
		stats[k] = conditionStats{n: len(idx), means: means, covG: &covG, comps: comps}
	}

	table := &pathway.ResultTable{Results: make([]pathway.EnrichmentResult, 0, req.Indicator.PathwayCount())}
	for rowIdx, name := range req.Indicator.Pathways {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := req.Indicator.Rows[rowIdx]
		res, err := scorePathway(name, row, stats, method)
		if err != nil {
			return nil, fmt.Errorf("pathway %q: %w", name, err)
		}
		table.Results = append(table.Results, res)
	}
	return table, nil
}

// scorePathway aggregates gene-level propagated effects for one pathway and
// compares them across conditions.
func scorePathway(name string, row []int, stats []conditionStats, method ports.VarianceMethod) (pathway.EnrichmentResult, error) {
	effects := make([]float64, len(stats))
	variances := make([]float64, len(stats))
	for k, cs := range stats {
		m := 0.0
		for i, b := range row {
			if b != 0 {
				m += cs.means[i]
			}
		}
		effects[k] = m

		// b' (sigmaG*G + sigmaE*I) b / n
		v := 0.0
		for i, bi := range row {
			if bi == 0 {
				continue
			}
			for j, bj := range row {
				if bj == 0 {
					continue
				}
				term := cs.comps.SigmaG * cs.covG.At(i, j)
				if i == j {
					term += cs.comps.SigmaE
				}
				v += term
			}
		}
		v /= float64(cs.n)
		if v <= 0 || math.IsNaN(v) {
			return pathway.EnrichmentResult{}, core.NewDegenerateVarianceError("pathway variance", v)
		}
		variances[k] = v
	}

	if len(stats) == 2 {
		diff := effects[1] - effects[0]
		z := diff / math.Sqrt(variances[0]+variances[1])
		pval := clampP(2 * (1 - distuv.UnitNormal.CDF(math.Abs(z))))
		dir := pathway.DirectionNone
		if diff > 0 {
			dir = pathway.DirectionUp
		} else if diff < 0 {
			dir = pathway.DirectionDown
		}
		return pathway.EnrichmentResult{
			Pathway:   name,
			Statistic: z,
			PValue:    pval,
			Effect:    diff,
			Direction: dir,
			DF:        1,
			Method:    string(method),
		}, nil
	}

	// Omnibus across K conditions: precision-weighted spread of the
	// pathway effects around their weighted mean, chi-square with K-1 df.
	var wSum, wmSum float64
	for k := range stats {
		w := 1 / variances[k]
		wSum += w
		wmSum += w * effects[k]
	}
	center := wmSum / wSum
	stat := 0.0
	minE, maxE := effects[0], effects[0]
	for k := range stats {
		d := effects[k] - center
		stat += d * d / variances[k]
		minE = math.Min(minE, effects[k])
		maxE = math.Max(maxE, effects[k])
	}
	df := len(stats) - 1
	chi := distuv.ChiSquared{K: float64(df)}
	return pathway.EnrichmentResult{
		Pathway:   name,
		Statistic: stat,
		PValue:    clampP(1 - chi.CDF(stat)),
		Effect:    maxE - minE,
		Direction: pathway.DirectionNone,
		DF:        df,
		Method:    string(method),
	}, nil
}

func clampP(p float64) float64 {
	// An undefined statistic must not read as significant.
	if math.IsNaN(p) || p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
