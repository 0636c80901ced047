package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mepslink/meps"
)

func sampleRows() []meps.PersonRow {
	return []meps.PersonRow{
		{
			PersonID: "2320134101", Age: 53, Sex: 1, RaceEth: 2,
			PovCat: 4, InsCov: 1, DiabetesDx: 1,
			Stratum: 2089, Cluster: 2, Weight: 12543.179,
			FillCount: 3, ExpTotal: 120.75, AnyFill: 1,
		},
		{
			PersonID: "2320134102", Age: 27, Sex: 2, RaceEth: 1,
			PovCat: 3, InsCov: 2, DiabetesDx: 2,
			Stratum: 2090, Cluster: 1, Weight: 9871.42,
			FillCount: 0, ExpTotal: 0, AnyFill: 0,
		},
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persons.parquet")

	w, err := NewPersonWriter(path)
	if err != nil {
		t.Fatalf("NewPersonWriter: %v", err)
	}
	rows := sampleRows()
	n, err := w.Write(rows)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d rows, want 2", n)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}

	got, err := ReadPersonRows(path)
	if err != nil {
		t.Fatalf("ReadPersonRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestParquetEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")

	w, err := NewPersonWriter(path)
	if err != nil {
		t.Fatalf("NewPersonWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadPersonRows(path)
	if err != nil {
		t.Fatalf("ReadPersonRows: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("read %d rows from empty file", len(got))
	}
}

func TestNewPersonWriterBadPath(t *testing.T) {
	_, err := NewPersonWriter(filepath.Join(t.TempDir(), "no", "such", "dir", "f.parquet"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestReadPersonRowsMissingFile(t *testing.T) {
	_, err := ReadPersonRows(filepath.Join(t.TempDir(), "absent.parquet"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
