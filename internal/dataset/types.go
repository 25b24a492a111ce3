package dataset

// Record is one reported injury incident as it appears in the NEISS
// extract. Only the columns the analysis uses are kept.
type Record struct {
	CaseNumber  string
	BodyPart    int32
	Diagnosis   int32
	Disposition int32
	Age         int32 // >= 200 encodes months since birth
	Sex         string
	Narrative   string
}

// EnrichedRecord is a Record with its code labels resolved and its age
// normalised to years. It doubles as the Parquet row written by the
// exporter and read back by the Postgres loader.
//
// Label fields are nil when the code has no entry in the matching code
// table (left-join semantics). AgeGroup is nil when AgeInYears falls
// outside every bucket.
type EnrichedRecord struct {
	CaseNumber  string `parquet:"case_number"`
	BodyPart    int32  `parquet:"body_part"`
	Diagnosis   int32  `parquet:"diag"`
	Disposition int32  `parquet:"disposition"`
	Age         int32  `parquet:"age"`
	Sex         string `parquet:"sex"`
	Narrative   string `parquet:"narrative"`

	BodyPartName    *string `parquet:"body_part_name,optional"`
	DiagnosisName   *string `parquet:"diagnosis_name,optional"`
	DispositionName *string `parquet:"disposition_name,optional"`

	AgeInYears float64 `parquet:"age_in_years"`
	AgeGroup   *string `parquet:"age_group,optional"`
}

// Label dereferences an optional label, returning "" for nil.
func Label(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Dataset holds the four input tables after loading.
type Dataset struct {
	Records      []Record
	BodyParts    *CodeTable
	Diagnoses    *CodeTable
	Dispositions *CodeTable
}
