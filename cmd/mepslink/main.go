// Command mepslink merges the four MEPS extracts for one survey year —
// conditions, prescribed-medicine fills, the condition-event crosswalk
// and the full-year consolidated person file — into a person-level
// analytic file for a single clinical sub-population.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mepslink/link"
	"mepslink/meps"
	"mepslink/output"
	"mepslink/survey"
)

func main() {
	condPath := flag.String("cond", "", "Conditions extract CSV (HC-222 style)")
	clnkPath := flag.String("clnk", "", "Condition-event crosswalk CSV (CLNK)")
	pmedPath := flag.String("pmed", "", "Prescribed-medicine extract CSV (PMED)")
	fycPath := flag.String("fyc", "", "Full-year consolidated person CSV (FYC)")
	year := flag.Int("year", 2020, "Survey year (resolves year-suffixed columns)")
	code := flag.String("code", "END010", "Target CCSR classification code")
	outPath := flag.String("out", "", "Output analytic file (.csv or .parquet)")
	lonely := flag.Bool("adjust-lonely-psu", false, "Record the single-PSU adjustment for the downstream estimation engine")
	flag.Parse()

	if *condPath == "" || *clnkPath == "" || *pmedPath == "" || *fycPath == "" || *outPath == "" {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  mepslink -cond h222.csv -clnk clnk.csv -pmed pmed.csv -fyc fyc.csv -out persons.parquet [-year 2020] [-code END010]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	start := time.Now()

	rows, st, err := link.Run(link.Config{
		ConditionsPath: *condPath,
		LinksPath:      *clnkPath,
		FillsPath:      *pmedPath,
		PersonsPath:    *fycPath,
		Year:           *year,
		CCSRCode:       *code,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := writeOutput(*outPath, rows); err != nil {
		log.Fatal(err)
	}

	opts := survey.Options{AdjustLonelyPSU: *lonely}
	all := survey.WeightedTotals(rows, nil)
	dom := survey.WeightedTotals(rows, survey.EverDiagnosed)
	design := survey.Describe(rows, opts)

	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Conditions:    %d read, %d matching %s\n", st.Conditions, st.MatchedConditions, *code)
	fmt.Printf("  Crosswalk:     %d read, %d joined\n", st.Links, st.JoinedLinks)
	fmt.Printf("  Fills:         %d read, %d joined, %d after dedup\n", st.Fills, st.JoinedFills, st.DedupedFills)
	if st.Conflicts > 0 {
		fmt.Printf("  Conflicts:     %d (see warnings above)\n", st.Conflicts)
	}
	fmt.Printf("  Persons:       %d\n", st.Persons)
	fmt.Printf("  Output:        %s\n", *outPath)
	fmt.Println()
	fmt.Printf("Weighted totals (full sample):\n")
	fmt.Printf("  Population:    %.0f\n", all.Population)
	fmt.Printf("  Fills:         %.0f\n", all.FillTotal)
	fmt.Printf("  Expenditure:   $%.0f\n", all.ExpTotal)
	fmt.Printf("Weighted totals (ever-diagnosed domain):\n")
	fmt.Printf("  Population:    %.0f\n", dom.Population)
	fmt.Printf("  Fills:         %.0f\n", dom.FillTotal)
	fmt.Printf("  Expenditure:   $%.0f\n", dom.ExpTotal)
	fmt.Printf("Design: %d strata, %d clusters", design.Strata, design.Clusters)
	if len(design.LonelyStrata) > 0 {
		fmt.Printf(", lonely strata %v (adjust=%v)", design.LonelyStrata, design.AdjustLonelyPSU)
	}
	fmt.Println()
}

func writeOutput(path string, rows []meps.PersonRow) error {
	if isParquet(path) {
		w, err := output.NewPersonWriter(path)
		if err != nil {
			return err
		}
		if _, err := w.Write(rows); err != nil {
			w.Close()
			os.Remove(path)
			return err
		}
		if err := w.Close(); err != nil {
			os.Remove(path)
			return err
		}
		return nil
	}
	return output.WriteCSV(path, rows)
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}
