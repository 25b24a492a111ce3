// Package report prints analysis results as console text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"

	"neiss/internal/metrics"
)

const notAvailable = "n/a (no skateboard-related narratives)"

// Write prints every statistic in res, in question order, to w.
func Write(w io.Writer, res *metrics.Results) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Total number of records in NEISS data:", res.Summary.Rows)
	fmt.Fprintln(bw, "Unique cases:", res.Summary.UniqueCases)

	// Question 1
	fmt.Fprint(bw, "\nTop Body Parts:\n\n")
	writeCounts(bw, res.TopBodyParts)
	fmt.Fprint(bw, "\nBottom Body Parts:\n\n")
	writeCounts(bw, res.BottomBodyParts)

	// Question 2
	fmt.Fprintln(bw, "\nTotal Skateboard related injuries identified from narrative/description of the injury:")
	fmt.Fprintln(bw, res.SkateboardInjuries)

	fmt.Fprintln(bw, "\nSkateboard Injuries by Sex")
	if res.SexShares != nil {
		fmt.Fprintln(bw, "Female:", metrics.FormatPercent(res.SexShares.FemaleRatio()))
		fmt.Fprintln(bw, "Male:", metrics.FormatPercent(res.SexShares.MaleRatio()))
	} else {
		fmt.Fprintln(bw, "Female:", notAvailable)
		fmt.Fprintln(bw, "Male:", notAvailable)
	}

	fmt.Fprintln(bw, "\nAverage age of someone injured because of skateboard:")
	if res.Age != nil {
		fmt.Fprintln(bw, "Mean:", res.Age.MeanYears(), "years")
		fmt.Fprintln(bw, "Median:", res.Age.MedianYears(), "years")
	} else {
		fmt.Fprintln(bw, "Mean:", notAvailable)
		fmt.Fprintln(bw, "Median:", notAvailable)
	}

	// Question 3
	fmt.Fprintln(bw, "\nDiagnosis that had highest hospitalization Rate:")
	writeTopRate(bw, res.Hospitalization, "total_hospitalized", "hospitalization_rate (%)")

	fmt.Fprintln(bw, "\nDiagnosis most often concluded with the individual leaving without being seen:")
	writeTopRate(bw, res.NotSeen, "total_not_seen", "not_seen_rate (%)")

	fmt.Fprintf(bw, "\n%% of cases with diagnosis not stated or marked as other: %.2f\n", res.NotStated)

	// Question 4
	fmt.Fprint(bw, "\nReported Injuries by Age Group:\n\n")
	tw := tabwriter.NewWriter(bw, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "age_group\ttotal_cases\tpercent_total\t")
	for _, g := range res.AgeGroups {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t\n", g.Group, g.Cases, g.PercentTotal)
	}
	tw.Flush()

	return bw.Flush()
}

func writeCounts(w io.Writer, counts []metrics.Count) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Count)
	}
	tw.Flush()
}

func writeTopRate(w io.Writer, table []metrics.RateRow, countHeader, rateHeader string) {
	top, ok := metrics.Top(table)
	if !ok {
		fmt.Fprintln(w, "n/a (no diagnosis labels)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "diagnosis_name\ttotal_population\t%s\t%s\t\n", countHeader, rateHeader)
	fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t\n", top.Diagnosis, top.Total, top.Matching, top.Rate)
	tw.Flush()
}

// WriteRates prints the case counts and the top row of each rate table, as
// answered by the database.
func WriteRates(w io.Writer, summary metrics.Summary, hospitalization, notSeen []metrics.RateRow) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Total number of records in database:", summary.Rows)
	fmt.Fprintln(bw, "Unique cases:", summary.UniqueCases)

	fmt.Fprintln(bw, "\nDiagnosis that had highest hospitalization Rate:")
	writeTopRate(bw, hospitalization, "total_hospitalized", "hospitalization_rate (%)")

	fmt.Fprintln(bw, "\nDiagnosis most often concluded with the individual leaving without being seen:")
	writeTopRate(bw, notSeen, "total_not_seen", "not_seen_rate (%)")

	return bw.Flush()
}
