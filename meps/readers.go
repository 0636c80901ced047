package meps

import "io"

// ConditionReader streams ConditionRecords from a conditions extract.
type ConditionReader struct {
	f *extractFile
}

func NewConditionReader(path string) (*ConditionReader, error) {
	f, err := openExtract(path)
	if err != nil {
		return nil, err
	}
	if err := f.require("DUPERSID", "CONDIDX", "ICD10CDX", "CCSR1X", "CCSR2X", "CCSR3X"); err != nil {
		return nil, err
	}
	return &ConditionReader{f: f}, nil
}

// Next returns the next condition row, or io.EOF.
func (r *ConditionReader) Next() (ConditionRecord, error) {
	row, err := r.f.next()
	if err != nil {
		return ConditionRecord{}, err
	}
	return ConditionRecord{
		PersonID:    r.f.str(row, "DUPERSID"),
		ConditionID: r.f.str(row, "CONDIDX"),
		ICD10:       r.f.str(row, "ICD10CDX"),
		CCSR: [3]string{
			r.f.str(row, "CCSR1X"),
			r.f.str(row, "CCSR2X"),
			r.f.str(row, "CCSR3X"),
		},
	}, nil
}

func (r *ConditionReader) Close() error { return r.f.Close() }

// LinkReader streams LinkRecords from a condition-event crosswalk extract.
type LinkReader struct {
	f *extractFile
}

func NewLinkReader(path string) (*LinkReader, error) {
	f, err := openExtract(path)
	if err != nil {
		return nil, err
	}
	if err := f.require("DUPERSID", "CONDIDX", "EVNTIDX", "CLNKIDX", "EVENTYPE"); err != nil {
		return nil, err
	}
	return &LinkReader{f: f}, nil
}

// Next returns the next crosswalk row, or io.EOF.
func (r *LinkReader) Next() (LinkRecord, error) {
	row, err := r.f.next()
	if err != nil {
		return LinkRecord{}, err
	}
	return LinkRecord{
		PersonID:    r.f.str(row, "DUPERSID"),
		ConditionID: r.f.str(row, "CONDIDX"),
		EventID:     r.f.str(row, "EVNTIDX"),
		LinkID:      r.f.str(row, "CLNKIDX"),
		EventType:   r.f.str(row, "EVENTYPE"),
	}, nil
}

func (r *LinkReader) Close() error { return r.f.Close() }

// FillReader streams FillRecords from a prescribed-medicine extract.
// The LINKIDX column is renamed to EventID on read so fills join against
// the crosswalk's EVNTIDX.
type FillReader struct {
	f      *extractFile
	expCol string
}

func NewFillReader(path string, year int) (*FillReader, error) {
	f, err := openExtract(path)
	if err != nil {
		return nil, err
	}
	expCol := Varname("RXXP", year, "X")
	if err := f.require("DUPERSID", "RXRECIDX", "LINKIDX", "RXDRGNAM", expCol); err != nil {
		return nil, err
	}
	return &FillReader{f: f, expCol: expCol}, nil
}

// Next returns the next fill row, or io.EOF.
func (r *FillReader) Next() (FillRecord, error) {
	row, err := r.f.next()
	if err != nil {
		return FillRecord{}, err
	}
	exp, err := r.f.float(row, r.expCol)
	if err != nil {
		return FillRecord{}, err
	}
	return FillRecord{
		PersonID:    r.f.str(row, "DUPERSID"),
		FillID:      r.f.str(row, "RXRECIDX"),
		EventID:     r.f.str(row, "LINKIDX"),
		DrugName:    r.f.str(row, "RXDRGNAM"),
		Expenditure: exp,
	}, nil
}

func (r *FillReader) Close() error { return r.f.Close() }

// PersonReader streams PersonRecords from a full-year consolidated
// extract. The year-suffixed covariate and weight columns are resolved
// from the survey year.
type PersonReader struct {
	f                      *extractFile
	povCol, insCol, wgtCol string
}

func NewPersonReader(path string, year int) (*PersonReader, error) {
	f, err := openExtract(path)
	if err != nil {
		return nil, err
	}
	pov := Varname("POVCAT", year, "")
	ins := Varname("INSCOV", year, "")
	wgt := Varname("PERWT", year, "F")
	if err := f.require("DUPERSID", "AGELAST", "SEX", "RACETHX", pov, ins,
		"DIABDX_M18", "VARSTR", "VARPSU", wgt); err != nil {
		return nil, err
	}
	return &PersonReader{f: f, povCol: pov, insCol: ins, wgtCol: wgt}, nil
}

// Next returns the next person row, or io.EOF.
func (r *PersonReader) Next() (PersonRecord, error) {
	row, err := r.f.next()
	if err != nil {
		return PersonRecord{}, err
	}

	p := PersonRecord{PersonID: r.f.str(row, "DUPERSID")}

	ints := []struct {
		col string
		dst *int
	}{
		{"AGELAST", &p.Age},
		{"SEX", &p.Sex},
		{"RACETHX", &p.RaceEth},
		{r.povCol, &p.PovCat},
		{r.insCol, &p.InsCov},
		{"DIABDX_M18", &p.DiabetesDx},
		{"VARSTR", &p.Stratum},
		{"VARPSU", &p.Cluster},
	}
	for _, c := range ints {
		v, err := r.f.int(row, c.col)
		if err != nil {
			return PersonRecord{}, err
		}
		*c.dst = v
	}

	p.Weight, err = r.f.float(row, r.wgtCol)
	if err != nil {
		return PersonRecord{}, err
	}
	return p, nil
}

func (r *PersonReader) Close() error { return r.f.Close() }

// ReadConditions loads a whole conditions extract into memory.
func ReadConditions(path string) ([]ConditionRecord, error) {
	r, err := NewConditionReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var recs []ConditionRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}

// ReadLinks loads a whole crosswalk extract into memory.
func ReadLinks(path string) ([]LinkRecord, error) {
	r, err := NewLinkReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var recs []LinkRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}

// ReadFills loads a whole prescribed-medicine extract into memory.
func ReadFills(path string, year int) ([]FillRecord, error) {
	r, err := NewFillReader(path, year)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var recs []FillRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}

// ReadPersons loads a whole full-year consolidated extract into memory.
func ReadPersons(path string, year int) ([]PersonRecord, error) {
	r, err := NewPersonReader(path, year)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var recs []PersonRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
