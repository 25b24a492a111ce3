package metrics

import "neiss/internal/dataset"

// Results bundles every statistic of one analysis run, in report order.
type Results struct {
	Summary Summary

	TopBodyParts    []Count
	BottomBodyParts []Count

	SkateboardInjuries int
	// SexShares and Age are nil when no narrative matched.
	SexShares *SexShares
	Age       *AgeSummary

	Hospitalization []RateRow
	NotSeen         []RateRow
	NotStated       float64

	AgeGroups         []AgeGroupRow
	AgeGroupDiagnosis AgeDiagnosisMatrix
}

// Compute runs every statistic over the enriched rows.
func Compute(rows []dataset.EnrichedRecord) *Results {
	res := &Results{
		Summary:         Summarize(rows),
		TopBodyParts:    TopBodyParts(rows, BodyPartListSize),
		BottomBodyParts: BottomBodyParts(rows, BodyPartListSize),
	}

	matched := Skateboard().Filter(rows)
	res.SkateboardInjuries = len(matched)
	if shares, err := ComputeSexShares(matched); err == nil {
		res.SexShares = &shares
	}
	if age, err := SummarizeAge(matched); err == nil {
		res.Age = &age
	}

	res.Hospitalization = RateTable(rows, DispositionHospitalized)
	res.NotSeen = RateTable(rows, DispositionNotSeen)
	res.NotStated = NotStatedPercent(rows, res.Summary.UniqueCases)

	res.AgeGroups = AgeGroupDistribution(rows, res.Summary.UniqueCases)
	res.AgeGroupDiagnosis = AgeGroupDiagnosis(rows, TopDiagnosesPerGroup)
	return res
}
