package link

import "mepslink/meps"

type condKey struct {
	person, cond string
}

type eventKey struct {
	person, event string
}

type fillKey struct {
	person, fill string
}

// JoinConditionLinks inner-joins filtered condition rows to the
// crosswalk on (person id, condition id). Conditions with no linked
// event drop out, as do crosswalk rows for other conditions: only fills
// traceable to the target condition should survive. The join is
// many-to-many — one condition can link to several events, and
// duplicate-condition rows multiply out.
func JoinConditionLinks(conds []meps.ConditionRecord, links []meps.LinkRecord) []meps.LinkRecord {
	byCond := make(map[condKey][]meps.LinkRecord)
	for _, l := range links {
		k := condKey{l.PersonID, l.ConditionID}
		byCond[k] = append(byCond[k], l)
	}

	var out []meps.LinkRecord
	for _, c := range conds {
		out = append(out, byCond[condKey{c.PersonID, c.ConditionID}]...)
	}
	return out
}

// JoinFills inner-joins crosswalk rows to the fills table on
// (person id, event id). Events with no fill record drop out. The output
// can repeat the same physical fill when several crosswalk rows reach
// it; Deduplicate handles that downstream.
func JoinFills(links []meps.LinkRecord, fills []meps.FillRecord) []meps.FillRecord {
	byEvent := make(map[eventKey][]meps.FillRecord)
	for _, f := range fills {
		k := eventKey{f.PersonID, f.EventID}
		byEvent[k] = append(byEvent[k], f)
	}

	var out []meps.FillRecord
	for _, l := range links {
		out = append(out, byEvent[eventKey{l.PersonID, l.EventID}]...)
	}
	return out
}

// Conflict reports a fill id that surfaced with differing non-key
// attributes after deduplication. Fan-out duplicates the same underlying
// fill row, so drug name and expenditure must agree across duplicates;
// disagreement signals an upstream assumption violation and is surfaced
// as a data-quality warning, never silently resolved.
type Conflict struct {
	PersonID string
	FillID   string
}

// Deduplicate retains exactly one row per (person id, fill id) pair,
// preserving first-seen order. The returned conflicts list the keys
// whose duplicates disagreed on drug name or expenditure; the first-seen
// row is still the survivor in that case, but callers must surface the
// conflict. Deduplicate is idempotent.
func Deduplicate(fills []meps.FillRecord) ([]meps.FillRecord, []Conflict) {
	seen := make(map[fillKey]meps.FillRecord, len(fills))
	conflicted := make(map[fillKey]bool)

	var out []meps.FillRecord
	var conflicts []Conflict

	for _, f := range fills {
		k := fillKey{f.PersonID, f.FillID}
		first, ok := seen[k]
		if !ok {
			seen[k] = f
			out = append(out, f)
			continue
		}
		if !conflicted[k] && (first.DrugName != f.DrugName || first.Expenditure != f.Expenditure) {
			conflicted[k] = true
			conflicts = append(conflicts, Conflict{PersonID: f.PersonID, FillID: f.FillID})
		}
	}
	return out, conflicts
}
