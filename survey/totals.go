// Package survey computes simple weighted totals over the person-level
// analytic file and describes its complex-sample design. Variance
// estimation stays with the external survey engine; what lives here is
// plain weight summation plus the design bookkeeping that engine needs.
package survey

import (
	"sort"

	"mepslink/meps"
)

// Options parameterizes an estimation pass. AdjustLonelyPSU mirrors the
// engine-side toggle for strata containing a single sampling cluster; it
// is threaded explicitly through calls and recorded on the outputs so a
// run never depends on ambient package state.
type Options struct {
	AdjustLonelyPSU bool
}

// Totals are weighted population totals: the represented population
// size, total fills and total expenditure.
type Totals struct {
	Population float64
	FillTotal  float64
	ExpTotal   float64
}

// WeightedTotals sums sampling weights over rows, restricted to domain
// when non-nil. Weighted fill and expenditure totals use each person's
// weight against their per-person summary.
func WeightedTotals(rows []meps.PersonRow, domain func(meps.PersonRow) bool) Totals {
	var t Totals
	for _, r := range rows {
		if domain != nil && !domain(r) {
			continue
		}
		t.Population += r.Weight
		t.FillTotal += r.Weight * float64(r.FillCount)
		t.ExpTotal += r.Weight * r.ExpTotal
	}
	return t
}

// EverDiagnosed is the standard analysis domain: persons whose
// full-year record flags an ever-diagnosis of the target condition.
func EverDiagnosed(r meps.PersonRow) bool {
	return r.DiabetesDx == 1
}

// Design summarizes the sample design carried on the analytic file.
type Design struct {
	Strata       int
	Clusters     int
	LonelyStrata []int32 // strata observed with a single cluster
	// AdjustLonelyPSU echoes Options so downstream engines are invoked
	// consistently with how the file was produced.
	AdjustLonelyPSU bool
}

// Describe counts strata and clusters and flags lonely strata, which
// need the single-PSU adjustment when the external engine estimates
// variances.
func Describe(rows []meps.PersonRow, opts Options) Design {
	clusters := make(map[[2]int32]bool)
	perStratum := make(map[int32]map[int32]bool)
	for _, r := range rows {
		clusters[[2]int32{r.Stratum, r.Cluster}] = true
		m := perStratum[r.Stratum]
		if m == nil {
			m = make(map[int32]bool)
			perStratum[r.Stratum] = m
		}
		m[r.Cluster] = true
	}

	d := Design{
		Strata:          len(perStratum),
		Clusters:        len(clusters),
		AdjustLonelyPSU: opts.AdjustLonelyPSU,
	}
	for s, psus := range perStratum {
		if len(psus) == 1 {
			d.LonelyStrata = append(d.LonelyStrata, s)
		}
	}
	sort.Slice(d.LonelyStrata, func(i, j int) bool { return d.LonelyStrata[i] < d.LonelyStrata[j] })
	return d
}
