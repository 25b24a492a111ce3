package metrics

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neiss/internal/dataset"
)

func strPtr(s string) *string { return &s }

// row builds an enriched row the way dataset.Enrich would.
func row(caseNum string, raw int32, sex, bodyPart, diag, disp, narrative string) dataset.EnrichedRecord {
	r := dataset.EnrichedRecord{
		CaseNumber: caseNum,
		Age:        raw,
		Sex:        sex,
		Narrative:  narrative,
		AgeInYears: dataset.AgeInYears(raw),
	}
	if bodyPart != "" {
		r.BodyPartName = strPtr(bodyPart)
	}
	if diag != "" {
		r.DiagnosisName = strPtr(diag)
	}
	if disp != "" {
		r.DispositionName = strPtr(disp)
	}
	if g, ok := dataset.AgeGroupOf(r.AgeInYears); ok {
		r.AgeGroup = &g
	}
	return r
}

func TestSkateboardScenario(t *testing.T) {
	rows := []dataset.EnrichedRecord{
		row("1", 10, "Female", "Head", "Fracture", "Treated/Examined and Released", "Pt fell off a Skateboard"),
		row("2", 40, "Male", "Knee", "Strain", "Treated/Examined and Released", "twisted knee playing soccer"),
		row("3", 70, "Male", "Hip", "Fracture", DispositionHospitalized, "fell in bathroom"),
	}

	res := Compute(rows)
	assert.Equal(t, 1, res.SkateboardInjuries)

	require.NotNil(t, res.SexShares)
	assert.Equal(t, "100.00%", FormatPercent(res.SexShares.FemaleRatio()))
	assert.Equal(t, "0.00%", FormatPercent(res.SexShares.MaleRatio()))

	require.NotNil(t, res.Age)
	assert.Equal(t, 10, res.Age.MeanYears())
	assert.Equal(t, 10, res.Age.MedianYears())
}

func TestNarrativeMatcher(t *testing.T) {
	rows := []dataset.EnrichedRecord{
		{Narrative: "SKATEBOARDING AT PARK"},
		{Narrative: "fell from skate board"},
		{Narrative: "ROLLER SKATE, BOARD GAME"},
		{Narrative: ""},
	}
	assert.Len(t, Skateboard().Filter(rows), 2)

	m, err := NewNarrativeMatcher(`TRAMPOLINE`)
	require.NoError(t, err)
	assert.True(t, m.Match(&dataset.EnrichedRecord{Narrative: "jumped on trampoline"}))

	_, err = NewNarrativeMatcher(`(unclosed`)
	assert.Error(t, err)
}

func TestEmptyMatchSetIsGuarded(t *testing.T) {
	_, err := ComputeSexShares(nil)
	assert.True(t, errors.Is(err, ErrEmptyMatchSet))

	_, err = SummarizeAge(nil)
	assert.True(t, errors.Is(err, ErrEmptyMatchSet))

	res := Compute([]dataset.EnrichedRecord{row("1", 30, "Male", "Head", "Fracture", "", "fell down stairs")})
	assert.Equal(t, 0, res.SkateboardInjuries)
	assert.Nil(t, res.SexShares)
	assert.Nil(t, res.Age)
}

func TestSexSharesNeverExceedWhole(t *testing.T) {
	matched := []dataset.EnrichedRecord{
		{Sex: "Female"}, {Sex: "Male"}, {Sex: "Male"}, {Sex: "Unknown"},
	}
	s, err := ComputeSexShares(matched)
	require.NoError(t, err)
	assert.Equal(t, SexShares{Matches: 4, Female: 1, Male: 2}, s)
	assert.LessOrEqual(t, s.FemaleRatio()+s.MaleRatio(), 1.0)
	assert.Equal(t, "25.00%", FormatPercent(s.FemaleRatio()))
	assert.Equal(t, "50.00%", FormatPercent(s.MaleRatio()))
}

func TestSummarizeAgeEvenCount(t *testing.T) {
	a, err := SummarizeAge([]dataset.EnrichedRecord{
		{AgeInYears: 10}, {AgeInYears: 13}, {AgeInYears: 20}, {AgeInYears: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 18.25, a.Mean)
	assert.Equal(t, 16.5, a.Median)
	assert.Equal(t, 18, a.MeanYears())
	assert.Equal(t, 17, a.MedianYears())
}

func TestBodyPartRankings(t *testing.T) {
	var rows []dataset.EnrichedRecord
	add := func(label string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, dataset.EnrichedRecord{BodyPartName: strPtr(label)})
		}
	}
	add("Head", 9)
	add("Face", 7)
	add("Finger", 7)
	add("Knee", 5)
	add("Ankle", 4)
	add("Trunk", 3)
	add("Ear", 2)
	add("Toe", 1)
	rows = append(rows, dataset.EnrichedRecord{}) // unlabelled

	top := TopBodyParts(rows, 6)
	want := []Count{{"Head", 9}, {"Face", 7}, {"Finger", 7}, {"Knee", 5}, {"Ankle", 4}, {"Trunk", 3}}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("top body parts mismatch (-want +got):\n%s", diff)
	}

	bottom := BottomBodyParts(rows, 6)
	want = []Count{{"Toe", 1}, {"Ear", 2}, {"Trunk", 3}, {"Ankle", 4}, {"Knee", 5}, {"Face", 7}}
	if diff := cmp.Diff(want, bottom); diff != "" {
		t.Errorf("bottom body parts mismatch (-want +got):\n%s", diff)
	}

	few := rows[:9+7] // Head and Face only
	distinct := len(BodyPartCounts(few))
	assert.LessOrEqual(t, len(TopBodyParts(few, 6)), distinct)
	assert.LessOrEqual(t, len(BottomBodyParts(few, 6)), distinct)
}

func TestRateTableKeepsZeroRows(t *testing.T) {
	rows := []dataset.EnrichedRecord{
		row("1", 30, "Male", "", "Fracture", DispositionHospitalized, ""),
		row("2", 30, "Male", "", "Fracture", "Treated/Examined and Released", ""),
		row("3", 30, "Male", "", "Fracture", "Treated/Examined and Released", ""),
		row("4", 30, "Male", "", "Laceration", "Treated/Examined and Released", ""),
		row("5", 30, "Male", "", "Burns", DispositionHospitalized, ""),
		row("6", 30, "Male", "", "Burns", DispositionNotSeen, ""),
		row("7", 30, "Male", "", "", DispositionHospitalized, ""),
		row("8", 30, "Male", "", "Strain", "", ""),
	}

	hosp := RateTable(rows, DispositionHospitalized)
	want := []RateRow{
		{Diagnosis: "Burns", Total: 2, Matching: 1, Rate: 50},
		{Diagnosis: "Fracture", Total: 3, Matching: 1, Rate: 33.33},
		{Diagnosis: "Laceration", Total: 1, Matching: 0, Rate: 0},
		{Diagnosis: "Strain", Total: 1, Matching: 0, Rate: 0},
	}
	if diff := cmp.Diff(want, hosp); diff != "" {
		t.Errorf("hospitalization table mismatch (-want +got):\n%s", diff)
	}

	notSeen := RateTable(rows, DispositionNotSeen)
	assert.Len(t, notSeen, 4, "every diagnosis label must appear")
	top, ok := Top(notSeen)
	require.True(t, ok)
	assert.Equal(t, RateRow{Diagnosis: "Burns", Total: 2, Matching: 1, Rate: 50}, top)

	_, ok = Top(nil)
	assert.False(t, ok)
}

func TestSummaryAndNotStated(t *testing.T) {
	rows := []dataset.EnrichedRecord{
		{CaseNumber: "1", Diagnosis: 71},
		{CaseNumber: "1", Diagnosis: 57},
		{CaseNumber: "2", Diagnosis: 71},
		{CaseNumber: "3", Diagnosis: 59},
	}
	s := Summarize(rows)
	assert.Equal(t, Summary{Rows: 4, UniqueCases: 3}, s)
	assert.Equal(t, 66.67, NotStatedPercent(rows, s.UniqueCases))
	assert.Equal(t, 0.0, NotStatedPercent(nil, 0))
}

func TestAgeGroupDistribution(t *testing.T) {
	rows := []dataset.EnrichedRecord{
		row("1", 2, "", "", "", "", ""),
		row("2", 212, "", "", "", "", ""), // 1 year
		row("3", 10, "", "", "", "", ""),
		row("4", 30, "", "", "", "", ""),
		row("5", 199, "", "", "", "", ""), // beyond every bucket
	}
	got := AgeGroupDistribution(rows, 5)
	want := []AgeGroupRow{
		{Group: dataset.Infant, Cases: 2, PercentTotal: 40},
		{Group: dataset.Children, Cases: 1, PercentTotal: 20},
		{Group: dataset.Youth, Cases: 0, PercentTotal: 0},
		{Group: dataset.Adults, Cases: 1, PercentTotal: 20},
		{Group: dataset.Seniors, Cases: 0, PercentTotal: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("age groups mismatch (-want +got):\n%s", diff)
	}
}

func TestAgeGroupDiagnosisMatrix(t *testing.T) {
	var rows []dataset.EnrichedRecord
	add := func(raw int32, diag string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, row("x", raw, "", "", diag, "", ""))
		}
	}
	add(5, "Fracture", 3)
	add(5, "Laceration", 2)
	add(5, "Burns", 1)
	add(40, "Strain", 4)
	add(40, "Fracture", 1)
	add(40, "", 9) // unlabelled diagnosis, skipped

	m := AgeGroupDiagnosis(rows, 2)
	assert.Equal(t, dataset.AgeGroups, m.Groups)
	assert.Equal(t, []string{"Fracture", "Laceration", "Strain"}, m.Diagnoses)

	want := [][]float64{
		{0, 0, 0},
		{3, 2, 0}, // Burns falls outside the top 2
		{0, 0, 0},
		{1, 0, 4},
		{0, 0, 0},
	}
	if diff := cmp.Diff(want, m.Counts); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{0, 3, 0, 1, 0}, m.Column(0))
}

func TestRateRoundsHalfUpOnExactHundredths(t *testing.T) {
	tests := []struct {
		part, whole int
		want        float64
	}{
		{23, 160, 14.38},
		{41, 160, 25.63},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{0, 7, 0},
		{7, 7, 100},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}

func TestRateTableUsesExactRounding(t *testing.T) {
	var rows []dataset.EnrichedRecord
	add := func(diag string, total, hospitalized int) {
		for i := 0; i < total; i++ {
			disp := "Treated/Examined and Released"
			if i < hospitalized {
				disp = DispositionHospitalized
			}
			d, dp := diag, disp
			rows = append(rows, dataset.EnrichedRecord{DiagnosisName: &d, DispositionName: &dp})
		}
	}
	add("Fracture", 160, 23)
	add("Concussion", 160, 41)

	table := RateTable(rows, DispositionHospitalized)
	require.Len(t, table, 2)
	assert.Equal(t, RateRow{Diagnosis: "Concussion", Total: 160, Matching: 41, Rate: 25.63}, table[0])
	assert.Equal(t, RateRow{Diagnosis: "Fracture", Total: 160, Matching: 23, Rate: 14.38}, table[1])
}
