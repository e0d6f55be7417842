package network

// BICRecord scores one grid point of the tuning search. Failed grid points
// keep their row with Err set so the table stays complete; they are never
// silently substituted.
type BICRecord struct {
	Lambda float64 `json:"lambda"`
	Weight float64 `json:"weight"`
	BIC    float64 `json:"bic"`
	DF     int     `json:"df"`
	Err    string  `json:"err,omitempty"`
}

// BICTable is the ordered collection of grid-point scores from one
// selection run.
type BICTable []BICRecord

// Best returns the index of the successful record with the minimum BIC.
// Ties break toward the larger lambda (the sparser, more conservative
// model), then the larger weight. Returns -1 if no grid point succeeded.
func (t BICTable) Best() int {
	best := -1
	for i, rec := range t {
		if rec.Err != "" {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := t[best]
		switch {
		case rec.BIC < b.BIC:
			best = i
		case rec.BIC == b.BIC && rec.Lambda > b.Lambda:
			best = i
		case rec.BIC == b.BIC && rec.Lambda == b.Lambda && rec.Weight > b.Weight:
			best = i
		}
	}
	return best
}

// Failed counts the grid points that did not produce a fit.
func (t BICTable) Failed() int {
	n := 0
	for _, rec := range t {
		if rec.Err != "" {
			n++
		}
	}
	return n
}
