// Package metrics computes the descriptive statistics of the NEISS
// analysis. Every function is a pure function of the enriched rows.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"neiss/internal/dataset"
)

// ErrEmptyMatchSet is returned by statistics that divide by the size of the
// narrative match set when nothing matched.
var ErrEmptyMatchSet = errors.New("no rows match the narrative pattern")

const (
	// SkateboardPattern matches skateboard-related narratives, case-insensitively.
	SkateboardPattern = `SKATEBOARD|SKATE BOARD`

	DispositionHospitalized = "Treated and admitted for hospitalization (within same facility)"
	DispositionNotSeen      = "Left without being seen/Left against medical advice"

	// DiagnosisNotStatedCode is the "Other/Not Stated" diagnosis.
	DiagnosisNotStatedCode = 71

	SexFemale = "Female"
	SexMale   = "Male"

	BodyPartListSize     = 6
	TopDiagnosesPerGroup = 10
)

// Count is one entry of a frequency table.
type Count struct {
	Label string
	Count int
}

// Summary describes the size of the dataset.
type Summary struct {
	Rows        int
	UniqueCases int
}

// Summarize counts rows and distinct case numbers.
func Summarize(rows []dataset.EnrichedRecord) Summary {
	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		seen[rows[i].CaseNumber] = struct{}{}
	}
	return Summary{Rows: len(rows), UniqueCases: len(seen)}
}

// BodyPartCounts returns the frequency of each body part label, most
// frequent first. Rows without a label are not counted.
func BodyPartCounts(rows []dataset.EnrichedRecord) []Count {
	freq := make(map[string]int)
	for i := range rows {
		if rows[i].BodyPartName != nil {
			freq[*rows[i].BodyPartName]++
		}
	}
	counts := make([]Count, 0, len(freq))
	for label, n := range freq {
		counts = append(counts, Count{Label: label, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// TopBodyParts returns the n most frequent body parts, descending.
func TopBodyParts(rows []dataset.EnrichedRecord, n int) []Count {
	counts := BodyPartCounts(rows)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// BottomBodyParts returns the n least frequent body parts, ascending.
func BottomBodyParts(rows []dataset.EnrichedRecord, n int) []Count {
	counts := BodyPartCounts(rows)
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count < counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// NarrativeMatcher selects rows whose narrative matches a pattern.
type NarrativeMatcher struct {
	re *regexp.Regexp
}

// NewNarrativeMatcher compiles pattern as a case-insensitive regular
// expression.
func NewNarrativeMatcher(pattern string) (*NarrativeMatcher, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile narrative pattern: %w", err)
	}
	return &NarrativeMatcher{re: re}, nil
}

var skateboard = &NarrativeMatcher{re: regexp.MustCompile("(?i)" + SkateboardPattern)}

// Skateboard returns the matcher for skateboard-related narratives.
func Skateboard() *NarrativeMatcher {
	return skateboard
}

func (m *NarrativeMatcher) Match(r *dataset.EnrichedRecord) bool {
	return m.re.MatchString(r.Narrative)
}

// Filter returns the matching rows in input order.
func (m *NarrativeMatcher) Filter(rows []dataset.EnrichedRecord) []dataset.EnrichedRecord {
	var out []dataset.EnrichedRecord
	for i := range rows {
		if m.Match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// SexShares holds the sex breakdown of a match set.
type SexShares struct {
	Matches int
	Female  int
	Male    int
}

// ComputeSexShares counts female and male rows among matched. Rows with any
// other sex value count towards Matches only, so the two shares may sum to
// less than 100%.
func ComputeSexShares(matched []dataset.EnrichedRecord) (SexShares, error) {
	s := SexShares{Matches: len(matched)}
	if s.Matches == 0 {
		return s, ErrEmptyMatchSet
	}
	for i := range matched {
		switch matched[i].Sex {
		case SexFemale:
			s.Female++
		case SexMale:
			s.Male++
		}
	}
	return s, nil
}

// FemaleRatio is Female/Matches in [0,1].
func (s SexShares) FemaleRatio() float64 {
	return ratio(s.Female, s.Matches)
}

// MaleRatio is Male/Matches in [0,1].
func (s SexShares) MaleRatio() float64 {
	return ratio(s.Male, s.Matches)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// FormatPercent renders a [0,1] ratio as a percentage with two decimals.
func FormatPercent(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}

// AgeSummary holds the central tendency of AgeInYears over a row set.
type AgeSummary struct {
	Mean   float64
	Median float64
}

// SummarizeAge computes mean and median AgeInYears of matched.
func SummarizeAge(matched []dataset.EnrichedRecord) (AgeSummary, error) {
	if len(matched) == 0 {
		return AgeSummary{}, ErrEmptyMatchSet
	}
	ages := make([]float64, len(matched))
	var sum float64
	for i := range matched {
		ages[i] = matched[i].AgeInYears
		sum += ages[i]
	}
	sort.Float64s(ages)

	median := ages[len(ages)/2]
	if len(ages)%2 == 0 {
		median = (ages[len(ages)/2-1] + ages[len(ages)/2]) / 2
	}
	return AgeSummary{Mean: sum / float64(len(ages)), Median: median}, nil
}

// MeanYears is the mean rounded to the nearest whole year.
func (a AgeSummary) MeanYears() int {
	return int(math.Round(a.Mean))
}

// MedianYears is the median rounded to the nearest whole year.
func (a AgeSummary) MedianYears() int {
	return int(math.Round(a.Median))
}

// NotStatedPercent is the share of unique cases whose diagnosis code is
// "Other/Not Stated", as a percentage rounded to two decimals.
func NotStatedPercent(rows []dataset.EnrichedRecord, uniqueCases int) float64 {
	if uniqueCases == 0 {
		return 0
	}
	var n int
	for i := range rows {
		if rows[i].Diagnosis == DiagnosisNotStatedCode {
			n++
		}
	}
	return Rate(n, uniqueCases)
}

// Rate returns part/whole as a percentage rounded half up to two decimals.
// Rounding happens on integer hundredths, so 23/160 gives 14.38 exactly as
// ROUND(numeric, 2) does in PostgreSQL. A zero whole gives 0.
func Rate(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	w := int64(whole)
	hundredths := (int64(part)*20000 + w) / (2 * w)
	return float64(hundredths) / 100
}
