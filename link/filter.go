// Package link builds the person-level analytic file: it filters the
// conditions extract to a target clinical classification, walks the
// condition-event crosswalk to the prescribed-medicine fills treating
// that condition, collapses the join fan-out back to one row per
// physical fill, and merges per-person fill summaries onto the sampled
// population.
package link

import "mepslink/meps"

// MatchesCCSR reports whether any of the condition's classification
// slots carries the target CCSR code. Conditions list up to three codes;
// the target can appear in any slot.
func MatchesCCSR(c meps.ConditionRecord, code string) bool {
	for _, cc := range c.CCSR {
		if cc == code {
			return true
		}
	}
	return false
}

// FilterConditions subsets the conditions table to rows matching the
// target CCSR code. The result may hold several rows for one person:
// distinct ICD-10 diagnoses collapse to the same classification. An
// empty result is valid.
func FilterConditions(conds []meps.ConditionRecord, code string) []meps.ConditionRecord {
	var out []meps.ConditionRecord
	for _, c := range conds {
		if MatchesCCSR(c, code) {
			out = append(out, c)
		}
	}
	return out
}
