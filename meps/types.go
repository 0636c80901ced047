// Package meps reads MEPS (Medical Expenditure Panel Survey) public-use
// CSV extracts and defines the record types flowing through the linkage
// pipeline. Each reader projects its extract down to the columns the
// pipeline needs and validates the schema before any row is consumed.
package meps

import "fmt"

// ConditionRecord is one diagnosed medical condition from the conditions
// extract (HC-222 for 2020). A person can carry several condition rows
// that collapse to the same CCSR classification under distinct ICD-10
// diagnosis codes.
type ConditionRecord struct {
	PersonID    string // DUPERSID
	ConditionID string // CONDIDX
	ICD10       string // ICD10CDX
	CCSR        [3]string
}

// LinkRecord is one crosswalk row from the condition-event link file
// (CLNK), tying a condition to a medical event.
type LinkRecord struct {
	PersonID    string // DUPERSID
	ConditionID string // CONDIDX
	EventID     string // EVNTIDX
	LinkID      string // CLNKIDX
	EventType   string // EVENTYPE
}

// FillRecord is one prescribed-medicine fill or refill from the PMED
// extract. EventID comes from the LINKIDX column, renamed on read so the
// fill joins against LinkRecord.EventID. FillID is unique within a person.
type FillRecord struct {
	PersonID    string // DUPERSID
	FillID      string // RXRECIDX
	EventID     string // LINKIDX, renamed EVNTIDX
	DrugName    string // RXDRGNAM
	Expenditure float64
}

// PersonRecord is one sampled individual from the full-year consolidated
// file. The population file carries exactly one row per person; the
// sampling design attributes (stratum, cluster, weight) pass through to
// the output untouched for the downstream estimation engine.
type PersonRecord struct {
	PersonID   string // DUPERSID
	Age        int    // AGELAST
	Sex        int
	RaceEth    int // RACETHX
	PovCat     int
	InsCov     int
	DiabetesDx int     // DIABDX_M18, ever diagnosed
	Stratum    int     // VARSTR
	Cluster    int     // VARPSU
	Weight     float64 // PERWT{yy}F
}

// PersonRow is one row of the person-level analytic file: the full-year
// covariates plus the per-person fill summary. One row per person in the
// sampled population, persons with no matched fill carry explicit zeros.
//
// Parquet notes: person ids dictionary-encode, the mostly-small integer
// covariates bit-pack, and the design columns stay intact so survey
// engines can consume the file directly.
type PersonRow struct {
	PersonID   string  `parquet:"dupersid"`
	Age        int32   `parquet:"agelast"`
	Sex        int32   `parquet:"sex"`
	RaceEth    int32   `parquet:"racethx"`
	PovCat     int32   `parquet:"povcat"`
	InsCov     int32   `parquet:"inscov"`
	DiabetesDx int32   `parquet:"diabdx"`
	Stratum    int32   `parquet:"varstr"`
	Cluster    int32   `parquet:"varpsu"`
	Weight     float64 `parquet:"perwt"`

	FillCount int32   `parquet:"rxtot"`
	ExpTotal  float64 `parquet:"rxxptot"`
	AnyFill   int32   `parquet:"anyfill"`
}

// Varname builds a year-suffixed MEPS variable name, e.g.
// Varname("RXXP", 2020, "X") = "RXXP20X" and Varname("PERWT", 2020, "F")
// = "PERWT20F".
func Varname(prefix string, year int, suffix string) string {
	return fmt.Sprintf("%s%02d%s", prefix, year%100, suffix)
}
