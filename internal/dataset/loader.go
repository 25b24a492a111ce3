package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names of the NEISS records extract.
const (
	ColCaseNumber  = "CPSC Case #"
	ColBodyPart    = "body_part"
	ColDiagnosis   = "diag"
	ColDisposition = "disposition"
	ColAge         = "age"
	ColSex         = "sex"
	ColNarrative   = "narrative"

	// ColCode is the key column shared by every code table.
	ColCode = "Code"
)

// Label columns of the three code tables.
const (
	BodyPartLabel    = "BodyPart"
	DiagnosisLabel   = "Diagnosis"
	DispositionLabel = "Disposition"
)

// Paths locates the four input files.
type Paths struct {
	Records      string
	BodyParts    string
	Diagnoses    string
	Dispositions string
}

// Load reads all four inputs. Any missing or malformed file aborts the load.
func Load(p Paths) (*Dataset, error) {
	bodyParts, err := LoadCodeTable(p.BodyParts, BodyPartLabel)
	if err != nil {
		return nil, fmt.Errorf("load body parts: %w", err)
	}
	diagnoses, err := LoadCodeTable(p.Diagnoses, DiagnosisLabel)
	if err != nil {
		return nil, fmt.Errorf("load diagnoses: %w", err)
	}
	dispositions, err := LoadCodeTable(p.Dispositions, DispositionLabel)
	if err != nil {
		return nil, fmt.Errorf("load dispositions: %w", err)
	}
	records, err := LoadRecords(p.Records)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return &Dataset{
		Records:      records,
		BodyParts:    bodyParts,
		Diagnoses:    diagnoses,
		Dispositions: dispositions,
	}, nil
}

// LoadCodeTable reads a code table, projecting the Code column and the
// named label column. Other columns are ignored.
func LoadCodeTable(path, labelColumn string) (*CodeTable, error) {
	r, err := NewCSVReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := r.Require(ColCode, labelColumn)
	if err != nil {
		return nil, err
	}
	codeIdx, labelIdx := cols[0], cols[1]

	t := NewCodeTable(labelColumn)
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		raw := valAt(row, codeIdx)
		if raw == "" {
			continue
		}
		code, err := parseCode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s row %d column %q: %w", path, r.RowNum(), ColCode, err)
		}
		t.Add(code, valAt(row, labelIdx))
	}
	return t, nil
}

// LoadRecords reads the primary NEISS table.
func LoadRecords(path string) ([]Record, error) {
	r, err := NewCSVReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := r.Require(ColCaseNumber, ColBodyPart, ColDiagnosis, ColDisposition, ColAge, ColSex, ColNarrative)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := Record{
			CaseNumber: valAt(row, cols[0]),
			Sex:        valAt(row, cols[5]),
			Narrative:  valAt(row, cols[6]),
		}
		ints := []struct {
			name string
			idx  int
			dst  *int32
		}{
			{ColBodyPart, cols[1], &rec.BodyPart},
			{ColDiagnosis, cols[2], &rec.Diagnosis},
			{ColDisposition, cols[3], &rec.Disposition},
			{ColAge, cols[4], &rec.Age},
		}
		for _, f := range ints {
			v, err := parseCode(valAt(row, f.idx))
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %q: %w", path, r.RowNum(), f.name, err)
			}
			*f.dst = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseCode accepts plain integers and the "12.0" form that spreadsheet
// exports write for integer columns holding nulls.
func parseCode(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int32(f)) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int32(f), nil
}
