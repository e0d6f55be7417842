// Package profiling runs the pre-flight data checks before an analysis:
// per-gene summary statistics and detection of genes whose expression is too
// close to constant to support covariance estimation.
package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"netpath/domain/expr"
)

// GeneProfile holds summary statistics for one gene across all samples
type GeneProfile struct {
	Gene         string  `json:"gene"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	NearConstant bool    `json:"near_constant"`
}

// Report is the outcome of profiling one expression matrix
type Report struct {
	Profiles []GeneProfile `json:"profiles"`
	Warnings []string      `json:"warnings,omitempty"`
}

// nearConstantFraction flags genes whose spread is negligible relative to
// their magnitude; the glasso eta ridge can mask these silently otherwise.
const nearConstantFraction = 1e-8

// Profiler computes per-gene summaries
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Profile summarizes every gene row and flags near-constant genes.
func (p *Profiler) Profile(m *expr.Matrix) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	report := &Report{Profiles: make([]GeneProfile, 0, m.GeneCount())}
	for i, gene := range m.Genes {
		row := m.Data[i]

		mean, err := stats.Mean(row)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviation(row)
		if err != nil {
			return nil, err
		}
		lo, err := stats.Min(row)
		if err != nil {
			return nil, err
		}
		hi, err := stats.Max(row)
		if err != nil {
			return nil, err
		}
		med, err := stats.Median(row)
		if err != nil {
			return nil, err
		}

		prof := GeneProfile{
			Gene:   gene,
			Mean:   mean,
			StdDev: sd,
			Min:    lo,
			Max:    hi,
			Median: med,
		}
		scale := math.Max(math.Abs(mean), 1)
		if sd <= nearConstantFraction*scale {
			prof.NearConstant = true
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("gene %q is near-constant (sd=%g); its network estimates rest on the eta ridge alone", gene, sd))
		}
		report.Profiles = append(report.Profiles, prof)
	}
	return report, nil
}
