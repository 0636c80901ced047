package meps

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// SchemaError reports expected columns missing from an extract header.
// It is fatal: the pipeline aborts before any join when an input file
// does not carry the columns its schema promises.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing expected columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// extractFile streams one MEPS CSV extract. The header row is read at
// open time and indexed case-insensitively; data rows are fetched one at
// a time through next.
type extractFile struct {
	path   string
	file   *os.File
	csv    *csv.Reader
	rowNum int64
	colIdx map[string]int // uppercase column name → index
}

func openExtract(path string) (*extractFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	f := &extractFile{
		path:   path,
		file:   file,
		csv:    reader,
		colIdx: make(map[string]int),
	}

	header, err := f.csv.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	f.rowNum++
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i, h := range header {
		f.colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	return f, nil
}

// require validates that every named column is present, closing the file
// and returning a SchemaError otherwise.
func (f *extractFile) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := f.colIdx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	f.Close()
	return &SchemaError{File: f.path, Missing: missing}
}

// next returns the next non-empty data row, or io.EOF.
func (f *extractFile) next() ([]string, error) {
	for {
		row, err := f.csv.Read()
		if err != nil {
			return nil, err
		}
		f.rowNum++
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		return row, nil
	}
}

func (f *extractFile) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Cell helpers. MEPS string cells arrive quoted and occasionally padded;
// everything is trimmed on access.

func (f *extractFile) str(row []string, col string) string {
	if i, ok := f.colIdx[col]; ok && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func (f *extractFile) float(row []string, col string) (float64, error) {
	s := f.str(row, col)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: empty %s", f.path, f.rowNum, col)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: parse %s: %w", f.path, f.rowNum, col, err)
	}
	return v, nil
}

func (f *extractFile) int(row []string, col string) (int, error) {
	s := f.str(row, col)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: empty %s", f.path, f.rowNum, col)
	}
	// Some extracts carry integer codes with a decimal point (e.g. "2.0").
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s row %d: parse %s: %w", f.path, f.rowNum, col, err)
		}
		return int(v), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: parse %s: %w", f.path, f.rowNum, col, err)
	}
	return v, nil
}
