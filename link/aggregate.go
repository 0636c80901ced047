package link

import (
	"fmt"

	"mepslink/meps"
)

// PersonAggregate is the per-person summary of deduplicated fills.
// Persons with no matched fill have no entry at all; PersonMerger turns
// that absence into explicit zeros.
type PersonAggregate struct {
	PersonID  string
	FillCount int
	ExpTotal  float64
}

// AggregateByPerson groups deduplicated fills by person. Fills with an
// exact-zero expenditure still count toward FillCount while adding
// nothing to ExpTotal.
func AggregateByPerson(fills []meps.FillRecord) map[string]PersonAggregate {
	agg := make(map[string]PersonAggregate)
	for _, f := range fills {
		a := agg[f.PersonID]
		a.PersonID = f.PersonID
		a.FillCount++
		a.ExpTotal += f.Expenditure
		agg[f.PersonID] = a
	}
	return agg
}

// DuplicatePersonError reports a population file carrying the same
// person id twice. The one-row-per-person invariant underpins the
// downstream weighted estimation, so this is fatal, not recoverable.
type DuplicatePersonError struct {
	PersonID string
}

func (e *DuplicatePersonError) Error() string {
	return fmt.Sprintf("duplicate DUPERSID %s in population file", e.PersonID)
}

// MergePersons left-joins the population onto the per-person aggregates.
// The population drives cardinality: the output has exactly one row per
// input person, in input order. Persons without an aggregate entry get
// fill count 0, expenditure 0 and AnyFill 0.
func MergePersons(persons []meps.PersonRecord, agg map[string]PersonAggregate) ([]meps.PersonRow, error) {
	seen := make(map[string]bool, len(persons))
	rows := make([]meps.PersonRow, 0, len(persons))

	for _, p := range persons {
		if seen[p.PersonID] {
			return nil, &DuplicatePersonError{PersonID: p.PersonID}
		}
		seen[p.PersonID] = true

		row := meps.PersonRow{
			PersonID:   p.PersonID,
			Age:        int32(p.Age),
			Sex:        int32(p.Sex),
			RaceEth:    int32(p.RaceEth),
			PovCat:     int32(p.PovCat),
			InsCov:     int32(p.InsCov),
			DiabetesDx: int32(p.DiabetesDx),
			Stratum:    int32(p.Stratum),
			Cluster:    int32(p.Cluster),
			Weight:     p.Weight,
		}

		if a, ok := agg[p.PersonID]; ok {
			row.FillCount = int32(a.FillCount)
			row.ExpTotal = a.ExpTotal
			if a.FillCount > 0 {
				row.AnyFill = 1
			}
		}
		rows = append(rows, row)
	}

	if err := verifyMerged(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// verifyMerged enforces the post-merge invariant: AnyFill must be 1
// exactly when a person has fills, and zero-fill persons must carry
// explicit zeros rather than leftovers.
func verifyMerged(rows []meps.PersonRow) error {
	for _, r := range rows {
		switch r.AnyFill {
		case 0:
			if r.FillCount > 0 || r.ExpTotal > 0 {
				return fmt.Errorf("person %s: anyfill=0 with count=%d exp=%.2f", r.PersonID, r.FillCount, r.ExpTotal)
			}
		case 1:
			if r.FillCount == 0 {
				return fmt.Errorf("person %s: anyfill=1 with zero fill count", r.PersonID)
			}
		default:
			return fmt.Errorf("person %s: anyfill=%d out of range", r.PersonID, r.AnyFill)
		}
	}
	return nil
}
