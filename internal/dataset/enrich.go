package dataset

// JoinStats counts left rows that found no label in each code table.
type JoinStats struct {
	UnmatchedBodyPart    int
	UnmatchedDiagnosis   int
	UnmatchedDisposition int
}

// Enrich left-joins the code tables onto the records and derives the age
// columns. Unmatched codes leave the label nil; the row is kept. Output
// order follows input order, with fanned-out rows kept adjacent.
func Enrich(ds *Dataset) ([]EnrichedRecord, JoinStats) {
	var stats JoinStats

	rows := make([]EnrichedRecord, 0, len(ds.Records))
	for _, rec := range ds.Records {
		rows = append(rows, enrichedFrom(rec))
	}

	rows = leftJoin(rows, ds.BodyParts,
		func(r *EnrichedRecord) int32 { return r.BodyPart },
		func(r *EnrichedRecord, label *string) { r.BodyPartName = label },
		&stats.UnmatchedBodyPart)
	rows = leftJoin(rows, ds.Diagnoses,
		func(r *EnrichedRecord) int32 { return r.Diagnosis },
		func(r *EnrichedRecord, label *string) { r.DiagnosisName = label },
		&stats.UnmatchedDiagnosis)
	rows = leftJoin(rows, ds.Dispositions,
		func(r *EnrichedRecord) int32 { return r.Disposition },
		func(r *EnrichedRecord, label *string) { r.DispositionName = label },
		&stats.UnmatchedDisposition)

	return rows, stats
}

func enrichedFrom(rec Record) EnrichedRecord {
	row := EnrichedRecord{
		CaseNumber:  rec.CaseNumber,
		BodyPart:    rec.BodyPart,
		Diagnosis:   rec.Diagnosis,
		Disposition: rec.Disposition,
		Age:         rec.Age,
		Sex:         rec.Sex,
		Narrative:   rec.Narrative,
		AgeInYears:  AgeInYears(rec.Age),
	}
	if g, ok := AgeGroupOf(row.AgeInYears); ok {
		row.AgeGroup = &g
	}
	return row
}

func leftJoin(rows []EnrichedRecord, table *CodeTable, key func(*EnrichedRecord) int32,
	set func(*EnrichedRecord, *string), unmatched *int) []EnrichedRecord {

	out := make([]EnrichedRecord, 0, len(rows))
	for i := range rows {
		var labels []string
		if table != nil {
			labels = table.Lookup(key(&rows[i]))
		}
		if len(labels) == 0 {
			*unmatched++
			out = append(out, rows[i])
			continue
		}
		for _, l := range labels {
			row := rows[i]
			label := l
			set(&row, &label)
			out = append(out, row)
		}
	}
	return out
}
