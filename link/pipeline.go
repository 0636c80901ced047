package link

import (
	"fmt"
	"log"

	"mepslink/meps"
)

// Config names the four input extracts and the target sub-population.
type Config struct {
	ConditionsPath string // conditions extract (HC-222 style)
	LinksPath      string // condition-event crosswalk (CLNK)
	FillsPath      string // prescribed-medicine extract (PMED)
	PersonsPath    string // full-year consolidated extract (FYC)

	Year     int    // survey year, resolves year-suffixed columns
	CCSRCode string // target clinical classification, e.g. END010
}

// Stats carries per-stage row accounting for the completion summary.
type Stats struct {
	Conditions        int // condition rows read
	MatchedConditions int // rows matching the target code
	Links             int // crosswalk rows read
	JoinedLinks       int // crosswalk rows matched to a target condition
	Fills             int // fill rows read
	JoinedFills       int // fill rows after the event join (with fan-out)
	DedupedFills      int // distinct (person, fill) pairs
	Conflicts         int // dedup attribute conflicts (data-quality warnings)
	Persons           int // population rows, equals output rows
}

// Run executes the whole pipeline: read, filter, join, deduplicate,
// aggregate, merge. It is a pure function of the four inputs — same
// extracts, same output, safe to re-run. Any schema or key-integrity
// violation aborts with no partial output; dedup attribute conflicts are
// logged and counted but do not abort.
func Run(cfg Config) ([]meps.PersonRow, Stats, error) {
	var st Stats

	conds, err := meps.ReadConditions(cfg.ConditionsPath)
	if err != nil {
		return nil, st, fmt.Errorf("read conditions: %w", err)
	}
	links, err := meps.ReadLinks(cfg.LinksPath)
	if err != nil {
		return nil, st, fmt.Errorf("read crosswalk: %w", err)
	}
	fills, err := meps.ReadFills(cfg.FillsPath, cfg.Year)
	if err != nil {
		return nil, st, fmt.Errorf("read fills: %w", err)
	}
	persons, err := meps.ReadPersons(cfg.PersonsPath, cfg.Year)
	if err != nil {
		return nil, st, fmt.Errorf("read population: %w", err)
	}
	st.Conditions = len(conds)
	st.Links = len(links)
	st.Fills = len(fills)
	st.Persons = len(persons)

	matched := FilterConditions(conds, cfg.CCSRCode)
	st.MatchedConditions = len(matched)

	joinedLinks := JoinConditionLinks(matched, links)
	st.JoinedLinks = len(joinedLinks)

	joinedFills := JoinFills(joinedLinks, fills)
	st.JoinedFills = len(joinedFills)

	deduped, conflicts := Deduplicate(joinedFills)
	st.DedupedFills = len(deduped)
	st.Conflicts = len(conflicts)
	for _, c := range conflicts {
		log.Printf("warning: fill %s for person %s has conflicting attributes across crosswalk paths", c.FillID, c.PersonID)
	}

	rows, err := MergePersons(persons, AggregateByPerson(deduped))
	if err != nil {
		return nil, st, fmt.Errorf("merge population: %w", err)
	}
	return rows, st, nil
}
