package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"mepslink/meps"
)

// csvHeader is the fixed column order of the CSV analytic file. Names
// match the Parquet schema so both formats read identically downstream.
var csvHeader = []string{
	"DUPERSID", "AGELAST", "SEX", "RACETHX", "POVCAT", "INSCOV",
	"DIABDX", "VARSTR", "VARPSU", "PERWT",
	"RXTOT", "RXXPTOT", "ANYFILL",
}

// WriteCSV writes the analytic file as CSV, one row per person, header
// first. The file is written whole or not at all: on error the partial
// file is removed.
func WriteCSV(path string, rows []meps.PersonRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	write := func() error {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		rec := make([]string, len(csvHeader))
		for _, r := range rows {
			rec[0] = r.PersonID
			rec[1] = strconv.Itoa(int(r.Age))
			rec[2] = strconv.Itoa(int(r.Sex))
			rec[3] = strconv.Itoa(int(r.RaceEth))
			rec[4] = strconv.Itoa(int(r.PovCat))
			rec[5] = strconv.Itoa(int(r.InsCov))
			rec[6] = strconv.Itoa(int(r.DiabetesDx))
			rec[7] = strconv.Itoa(int(r.Stratum))
			rec[8] = strconv.Itoa(int(r.Cluster))
			rec[9] = strconv.FormatFloat(r.Weight, 'f', -1, 64)
			rec[10] = strconv.Itoa(int(r.FillCount))
			rec[11] = strconv.FormatFloat(r.ExpTotal, 'f', 2, 64)
			rec[12] = strconv.Itoa(int(r.AnyFill))
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}

	if err := write(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
