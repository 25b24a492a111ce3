package metrics

import (
	"sort"

	"neiss/internal/dataset"
)

// AgeGroupRow is one bucket of the age-group distribution.
type AgeGroupRow struct {
	Group        string
	Cases        int
	PercentTotal float64 // relative to unique cases, two decimals
}

// AgeGroupDistribution counts rows per age bucket. Every bucket is listed,
// in age order, including empty ones.
func AgeGroupDistribution(rows []dataset.EnrichedRecord, uniqueCases int) []AgeGroupRow {
	counts := make([]int, len(dataset.AgeGroups))
	for i := range rows {
		if rows[i].AgeGroup == nil {
			continue
		}
		if idx := dataset.AgeGroupIndex(*rows[i].AgeGroup); idx >= 0 {
			counts[idx]++
		}
	}

	out := make([]AgeGroupRow, len(dataset.AgeGroups))
	for i, g := range dataset.AgeGroups {
		out[i] = AgeGroupRow{Group: g, Cases: counts[i]}
		if uniqueCases > 0 {
			out[i].PercentTotal = Rate(counts[i], uniqueCases)
		}
	}
	return out
}

// AgeDiagnosisMatrix is the age group × diagnosis pivot behind the stacked
// chart. Counts[i][j] is the case count of Groups[i] with Diagnoses[j].
type AgeDiagnosisMatrix struct {
	Groups    []string
	Diagnoses []string
	Counts    [][]float64
}

// AgeGroupDiagnosis keeps the topN diagnoses by case count within each age
// bucket and pivots them into a matrix. Diagnoses are the sorted union
// across buckets; a diagnosis outside a bucket's topN counts zero there.
// Rows missing either the age group or the diagnosis label are skipped.
func AgeGroupDiagnosis(rows []dataset.EnrichedRecord, topN int) AgeDiagnosisMatrix {
	perGroup := make([]map[string]int, len(dataset.AgeGroups))
	for i := range perGroup {
		perGroup[i] = make(map[string]int)
	}
	for i := range rows {
		r := &rows[i]
		if r.AgeGroup == nil || r.DiagnosisName == nil {
			continue
		}
		if idx := dataset.AgeGroupIndex(*r.AgeGroup); idx >= 0 {
			perGroup[idx][*r.DiagnosisName]++
		}
	}

	kept := make([][]Count, len(perGroup))
	union := make(map[string]struct{})
	for i, freq := range perGroup {
		counts := make([]Count, 0, len(freq))
		for label, n := range freq {
			counts = append(counts, Count{Label: label, Count: n})
		}
		sort.Slice(counts, func(a, b int) bool {
			if counts[a].Count != counts[b].Count {
				return counts[a].Count > counts[b].Count
			}
			return counts[a].Label < counts[b].Label
		})
		if len(counts) > topN {
			counts = counts[:topN]
		}
		kept[i] = counts
		for _, c := range counts {
			union[c.Label] = struct{}{}
		}
	}

	m := AgeDiagnosisMatrix{Groups: append([]string(nil), dataset.AgeGroups...)}
	for d := range union {
		m.Diagnoses = append(m.Diagnoses, d)
	}
	sort.Strings(m.Diagnoses)

	col := make(map[string]int, len(m.Diagnoses))
	for j, d := range m.Diagnoses {
		col[d] = j
	}
	m.Counts = make([][]float64, len(m.Groups))
	for i := range m.Groups {
		m.Counts[i] = make([]float64, len(m.Diagnoses))
		for _, c := range kept[i] {
			m.Counts[i][col[c.Label]] = float64(c.Count)
		}
	}
	return m
}

// Column returns the counts of diagnosis j across all groups.
func (m AgeDiagnosisMatrix) Column(j int) []float64 {
	col := make([]float64, len(m.Groups))
	for i := range m.Groups {
		col[i] = m.Counts[i][j]
	}
	return col
}
