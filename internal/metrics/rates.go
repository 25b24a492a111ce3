package metrics

import (
	"sort"

	"neiss/internal/dataset"
)

// RateRow is one diagnosis of a disposition rate table.
type RateRow struct {
	Diagnosis string
	Total     int
	Matching  int
	Rate      float64 // percent, two decimals
}

// RateTable computes, per diagnosis label, the percentage of rows that
// ended with the given disposition. Every labelled diagnosis appears, with
// a zero count when none of its rows match. Rows sort by rate descending,
// then by diagnosis label. Rows without a diagnosis label are excluded.
func RateTable(rows []dataset.EnrichedRecord, disposition string) []RateRow {
	totals := make(map[string]int)
	matching := make(map[string]int)
	for i := range rows {
		r := &rows[i]
		if r.DiagnosisName == nil {
			continue
		}
		totals[*r.DiagnosisName]++
		if r.DispositionName != nil && *r.DispositionName == disposition {
			matching[*r.DiagnosisName]++
		}
	}

	table := make([]RateRow, 0, len(totals))
	for diag, total := range totals {
		m := matching[diag]
		table = append(table, RateRow{
			Diagnosis: diag,
			Total:     total,
			Matching:  m,
			Rate:      Rate(m, total),
		})
	}
	SortRates(table)
	return table
}

// SortRates orders a rate table by rate descending, then diagnosis label.
func SortRates(table []RateRow) {
	sort.Slice(table, func(i, j int) bool {
		if table[i].Rate != table[j].Rate {
			return table[i].Rate > table[j].Rate
		}
		return table[i].Diagnosis < table[j].Diagnosis
	})
}

// Top returns the first row of a sorted rate table.
func Top(table []RateRow) (RateRow, bool) {
	if len(table) == 0 {
		return RateRow{}, false
	}
	return table[0], true
}
