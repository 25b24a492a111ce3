package dataset

import "math"

// monthsToYears is the factor NEISS analyses use for one month.
const monthsToYears = 0.083333

// AgeGroup buckets, in display order.
const (
	Infant   = "Infant"
	Children = "Children"
	Youth    = "Youth"
	Adults   = "Adults"
	Seniors  = "Seniors"
)

// AgeGroups lists the buckets in ascending age order.
var AgeGroups = []string{Infant, Children, Youth, Adults, Seniors}

// ageGroupUpper holds the inclusive upper edge of each bucket in AgeGroups.
// Infant also includes its lower edge 0; the rest are left-open.
var ageGroupUpper = []float64{2, 14, 24, 64, 150}

// AgeInYears decodes a raw NEISS age. Values of 200 and above count months
// since birth and are converted to years rounded to two decimals.
func AgeInYears(raw int32) float64 {
	if raw >= 200 {
		return math.Round(float64(raw-200)*monthsToYears*100) / 100
	}
	return float64(raw)
}

// AgeGroupOf returns the bucket containing years, or false when years is
// negative, NaN or above 150.
func AgeGroupOf(years float64) (string, bool) {
	if math.IsNaN(years) || years < 0 {
		return "", false
	}
	for i, upper := range ageGroupUpper {
		if years <= upper {
			return AgeGroups[i], true
		}
	}
	return "", false
}

// AgeGroupIndex returns the position of group in AgeGroups, or -1.
func AgeGroupIndex(group string) int {
	for i, g := range AgeGroups {
		if g == group {
			return i
		}
	}
	return -1
}
