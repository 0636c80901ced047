package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mepslink/meps"
)

func person(id string, diabdx int, weight float64) meps.PersonRecord {
	return meps.PersonRecord{PersonID: id, DiabetesDx: diabdx, Weight: weight, Stratum: 2089, Cluster: 1}
}

func TestAggregateByPerson(t *testing.T) {
	fills := []meps.FillRecord{
		fill("P1", "F1", "E1", "METFORMIN", 42.50),
		fill("P1", "F2", "E1", "METFORMIN", 0.00), // zero expenditure still counts
		fill("P2", "F1", "E2", "INSULIN", 80.00),
	}

	agg := AggregateByPerson(fills)
	require.Len(t, agg, 2)

	a := agg["P1"]
	assert.Equal(t, 2, a.FillCount)
	assert.Equal(t, 42.50, a.ExpTotal)

	b := agg["P2"]
	assert.Equal(t, 1, b.FillCount)
	assert.Equal(t, 80.00, b.ExpTotal)
}

func TestAggregateByPersonAbsenceNotZeroRow(t *testing.T) {
	agg := AggregateByPerson(nil)
	_, ok := agg["P1"]
	assert.False(t, ok, "persons without fills have no aggregate entry")
}

func TestMergePersonsFillsZeros(t *testing.T) {
	persons := []meps.PersonRecord{
		person("P1", 1, 12000),
		person("P2", 2, 9000),
	}
	agg := map[string]PersonAggregate{
		"P1": {PersonID: "P1", FillCount: 3, ExpTotal: 120.75},
	}

	rows, err := MergePersons(persons, agg)
	require.NoError(t, err)
	require.Len(t, rows, 2, "population drives output cardinality")

	assert.Equal(t, int32(3), rows[0].FillCount)
	assert.Equal(t, 120.75, rows[0].ExpTotal)
	assert.Equal(t, int32(1), rows[0].AnyFill)

	// Unmatched person gets structural zeros, not nulls
	assert.Equal(t, "P2", rows[1].PersonID)
	assert.Equal(t, int32(0), rows[1].FillCount)
	assert.Equal(t, 0.0, rows[1].ExpTotal)
	assert.Equal(t, int32(0), rows[1].AnyFill)

	// Covariates pass through
	assert.Equal(t, 9000.0, rows[1].Weight)
	assert.Equal(t, int32(2089), rows[1].Stratum)
}

func TestMergePersonsDuplicatePersonFatal(t *testing.T) {
	persons := []meps.PersonRecord{
		person("P1", 1, 12000),
		person("P1", 1, 12000),
	}

	_, err := MergePersons(persons, nil)
	var dup *DuplicatePersonError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "P1", dup.PersonID)
}

func TestMergePersonsAggregateForUnknownPersonIgnored(t *testing.T) {
	persons := []meps.PersonRecord{person("P1", 1, 12000)}
	agg := map[string]PersonAggregate{
		"GHOST": {PersonID: "GHOST", FillCount: 5, ExpTotal: 10},
	}

	rows, err := MergePersons(persons, agg)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(0), rows[0].FillCount)
}

func TestVerifyMerged(t *testing.T) {
	cases := []struct {
		name string
		row  meps.PersonRow
		ok   bool
	}{
		{"zero person", meps.PersonRow{PersonID: "P1"}, true},
		{"filled person", meps.PersonRow{PersonID: "P1", FillCount: 2, ExpTotal: 10, AnyFill: 1}, true},
		{"flag off with fills", meps.PersonRow{PersonID: "P1", FillCount: 2, AnyFill: 0}, false},
		{"flag off with expenditure", meps.PersonRow{PersonID: "P1", ExpTotal: 5, AnyFill: 0}, false},
		{"flag on without fills", meps.PersonRow{PersonID: "P1", AnyFill: 1}, false},
		{"flag out of range", meps.PersonRow{PersonID: "P1", AnyFill: 7}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := verifyMerged([]meps.PersonRow{c.row})
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFillCountTotalMatchesDedupedPairs(t *testing.T) {
	fills := []meps.FillRecord{
		fill("P1", "F1", "E1", "A", 1),
		fill("P1", "F1", "E2", "A", 1), // duplicate pair
		fill("P1", "F2", "E1", "B", 2),
		fill("P2", "F1", "E3", "C", 3),
	}
	deduped, _ := Deduplicate(fills)
	agg := AggregateByPerson(deduped)

	persons := []meps.PersonRecord{person("P1", 1, 1), person("P2", 2, 1), person("P3", 2, 1)}
	rows, err := MergePersons(persons, agg)
	require.NoError(t, err)

	var total int32
	for _, r := range rows {
		total += r.FillCount
	}
	assert.Equal(t, int32(len(deduped)), total,
		"sum of fill counts equals distinct (person, fill) pairs")
}

func TestDuplicatePersonErrorMessage(t *testing.T) {
	err := error(&DuplicatePersonError{PersonID: "2320134101"})
	assert.Contains(t, err.Error(), "2320134101")
	assert.True(t, errors.As(err, new(*DuplicatePersonError)))
}
