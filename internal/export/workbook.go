package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"neiss/internal/chart"
	"neiss/internal/metrics"
)

// Workbook sheet names.
const (
	SheetSummary           = "Summary"
	SheetBodyParts         = "Body Parts"
	SheetHospitalization   = "Hospitalization"
	SheetNotSeen           = "Not Seen"
	SheetAgeGroups         = "Age Groups"
	SheetAgeGroupDiagnosis = "Age Group Diagnosis"
)

// WriteWorkbook saves res as an xlsx workbook with one sheet per question
// and native charts for the two age-group views.
func WriteWorkbook(path string, res *metrics.Results, cfg chart.RenderConfig) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetBodyParts, SheetHospitalization, SheetNotSeen, SheetAgeGroups, SheetAgeGroupDiagnosis} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	steps := []func(*excelize.File, int) error{
		func(f *excelize.File, hs int) error { return writeSummary(f, hs, res) },
		func(f *excelize.File, hs int) error { return writeBodyParts(f, hs, res) },
		func(f *excelize.File, hs int) error {
			return writeRates(f, hs, SheetHospitalization, "total_hospitalized", "hospitalization_rate (%)", res.Hospitalization)
		},
		func(f *excelize.File, hs int) error {
			return writeRates(f, hs, SheetNotSeen, "total_not_seen", "not_seen_rate (%)", res.NotSeen)
		},
		func(f *excelize.File, hs int) error { return writeAgeGroups(f, hs, res, cfg) },
		func(f *excelize.File, hs int) error { return writeAgeGroupDiagnosis(f, hs, res.AgeGroupDiagnosis, cfg) },
	}
	for _, step := range steps {
		if err := step(f, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, res *metrics.Results) error {
	female, male := "n/a", "n/a"
	if res.SexShares != nil {
		female = metrics.FormatPercent(res.SexShares.FemaleRatio())
		male = metrics.FormatPercent(res.SexShares.MaleRatio())
	}
	var mean, median any = "n/a", "n/a"
	if res.Age != nil {
		mean, median = res.Age.MeanYears(), res.Age.MedianYears()
	}

	rows := [][]any{
		{"metric", "value"},
		{"records", res.Summary.Rows},
		{"unique cases", res.Summary.UniqueCases},
		{"skateboard injuries", res.SkateboardInjuries},
		{"skateboard female", female},
		{"skateboard male", male},
		{"skateboard mean age (years)", mean},
		{"skateboard median age (years)", median},
		{"diagnosis not stated (%)", res.NotStated},
	}
	if err := writeRows(f, SheetSummary, rows, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 32)
}

func writeBodyParts(f *excelize.File, headerStyle int, res *metrics.Results) error {
	rows := [][]any{{"top body part", "count", "", "bottom body part", "count"}}
	n := max(len(res.TopBodyParts), len(res.BottomBodyParts))
	for i := 0; i < n; i++ {
		row := make([]any, 5)
		if i < len(res.TopBodyParts) {
			row[0], row[1] = res.TopBodyParts[i].Label, res.TopBodyParts[i].Count
		}
		if i < len(res.BottomBodyParts) {
			row[3], row[4] = res.BottomBodyParts[i].Label, res.BottomBodyParts[i].Count
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetBodyParts, rows, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetBodyParts, "A", "E", 24)
}

func writeRates(f *excelize.File, headerStyle int, sheet, countHeader, rateHeader string, table []metrics.RateRow) error {
	rows := [][]any{{"diagnosis_name", "total_population", countHeader, rateHeader}}
	for _, r := range table {
		rows = append(rows, []any{r.Diagnosis, r.Total, r.Matching, r.Rate})
	}
	if err := writeRows(f, sheet, rows, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

func writeAgeGroups(f *excelize.File, headerStyle int, res *metrics.Results, cfg chart.RenderConfig) error {
	rows := [][]any{{"age_group", "total_cases", "percent_total"}}
	for _, g := range res.AgeGroups {
		rows = append(rows, []any{g.Group, g.Cases, g.PercentTotal})
	}
	if err := writeRows(f, SheetAgeGroups, rows, headerStyle); err != nil {
		return err
	}
	if len(res.AgeGroups) == 0 {
		return nil
	}

	last := len(res.AgeGroups) + 1
	ref := sheetRef(SheetAgeGroups)
	err := f.AddChart(SheetAgeGroups, "E2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       ref + "!$B$1",
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, last),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{cfg.BarColor.Hex()}, Pattern: 1},
		}},
		Title:     []excelize.RichTextRun{{Text: "Reported Injuries by Age Group"}},
		Legend:    excelize.ChartLegend{Position: "none"},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Age Group"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Total Cases"}}},
		Dimension: excelize.ChartDimension{Width: 720, Height: 360},
	})
	if err != nil {
		return fmt.Errorf("add age group chart: %w", err)
	}
	return nil
}

func writeAgeGroupDiagnosis(f *excelize.File, headerStyle int, m metrics.AgeDiagnosisMatrix, cfg chart.RenderConfig) error {
	header := []any{"age_group"}
	for _, d := range m.Diagnoses {
		header = append(header, d)
	}
	rows := [][]any{header}
	for i, g := range m.Groups {
		row := []any{g}
		for _, v := range m.Counts[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetAgeGroupDiagnosis, rows, headerStyle); err != nil {
		return err
	}
	if len(m.Diagnoses) == 0 {
		return nil
	}

	ref := sheetRef(SheetAgeGroupDiagnosis)
	last := len(m.Groups) + 1
	series := make([]excelize.ChartSeries, len(m.Diagnoses))
	for j := range m.Diagnoses {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return fmt.Errorf("diagnosis column %d: %w", j, err)
		}
		series[j] = excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", ref, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", ref, col, col, last),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{cfg.SeriesColor(j).Hex()}, Pattern: 1},
		}
	}

	anchor, err := excelize.CoordinatesToCellName(1, last+3)
	if err != nil {
		return err
	}
	err = f.AddChart(SheetAgeGroupDiagnosis, anchor, &excelize.Chart{
		Type:      excelize.BarStacked,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Diagnosis for Reported Injuries by Age Group"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Age Group"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Total Cases"}}},
		Dimension: excelize.ChartDimension{Width: 1080, Height: 720},
	})
	if err != nil {
		return fmt.Errorf("add age group diagnosis chart: %w", err)
	}
	return nil
}

// writeRows writes rows starting at A1 and styles the first one as header.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, headerStyle)
}

// sheetRef quotes a sheet name for use in a cell range formula.
func sheetRef(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
