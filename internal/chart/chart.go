// Package chart renders the age-group charts to PNG files.
package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"neiss/internal/metrics"
)

// Output file names inside the charts directory.
const (
	AgeGroupFile          = "age_groups.png"
	AgeGroupDiagnosisFile = "age_group_diagnosis.png"
)

// Render writes both charts into dir and returns the written paths.
func Render(dir string, res *metrics.Results, cfg RenderConfig) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}

	bar := filepath.Join(dir, AgeGroupFile)
	if err := SaveAgeGroupBar(bar, res.AgeGroups, cfg); err != nil {
		return nil, err
	}
	stacked := filepath.Join(dir, AgeGroupDiagnosisFile)
	if err := SaveAgeDiagnosisStacked(stacked, res.AgeGroupDiagnosis, cfg); err != nil {
		return nil, err
	}
	return []string{bar, stacked}, nil
}

// AgeGroupBar builds the vertical bar chart of total cases per age group.
func AgeGroupBar(groups []metrics.AgeGroupRow, cfg RenderConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Reported Injuries by Age Group"
	p.X.Label.Text = "Age Group"
	p.Y.Label.Text = "Total Cases"
	p.X.Tick.Label.Font.Size = cfg.TickLabelSize
	p.Y.Tick.Label.Font.Size = cfg.TickLabelSize

	values := make(plotter.Values, len(groups))
	names := make([]string, len(groups))
	for i, g := range groups {
		values[i] = float64(g.Cases)
		names[i] = g.Group
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("age group bars: %w", err)
	}
	bars.Color = cfg.BarColor.Color()
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.Y.Min = 0
	return p, nil
}

// SaveAgeGroupBar renders AgeGroupBar to a PNG file.
func SaveAgeGroupBar(path string, groups []metrics.AgeGroupRow, cfg RenderConfig) error {
	p, err := AgeGroupBar(groups, cfg)
	if err != nil {
		return err
	}
	if err := p.Save(cfg.BarWidth, cfg.BarHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// AgeDiagnosisStacked builds the horizontal stacked bar chart of the age
// group × diagnosis matrix. The legend is returned separately so callers
// can place it outside the plot area.
func AgeDiagnosisStacked(m metrics.AgeDiagnosisMatrix, cfg RenderConfig) (*plot.Plot, plot.Legend, error) {
	p := plot.New()
	p.Title.Text = "Diagnosis for Reported Injuries by Age Group"
	p.Y.Label.Text = "Age Group"
	p.X.Label.Text = "Total Cases"
	tick := cfg.StackedTickLabelSize()
	p.X.Tick.Label.Font.Size = tick
	p.Y.Tick.Label.Font.Size = tick

	legend := plot.NewLegend()
	legend.Left = true
	legend.TextStyle.Font.Size = cfg.LegendSize

	var below *plotter.BarChart
	for j, diag := range m.Diagnoses {
		bars, err := plotter.NewBarChart(plotter.Values(m.Column(j)), vg.Points(30))
		if err != nil {
			return nil, legend, fmt.Errorf("bars for %q: %w", diag, err)
		}
		bars.Horizontal = true
		bars.Color = cfg.SeriesColor(j).Color()
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		legend.Add(diag, bars)
	}
	p.NominalY(m.Groups...)
	p.X.Min = 0
	return p, legend, nil
}

// SaveAgeDiagnosisStacked renders the stacked chart with its legend in a
// strip to the right of the plot.
func SaveAgeDiagnosisStacked(path string, m metrics.AgeDiagnosisMatrix, cfg RenderConfig) error {
	p, legend, err := AgeDiagnosisStacked(m, cfg)
	if err != nil {
		return err
	}

	img := vgimg.New(cfg.StackedWidth, cfg.StackedHeight)
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, -cfg.LegendWidth, 0, 0))
	strip := draw.Crop(dc, cfg.StackedWidth-cfg.LegendWidth, 0, 0, 0)
	centerLegend(&legend, strip)
	legend.Draw(strip)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// centerLegend offsets a bottom-anchored legend so it sits halfway up c.
func centerLegend(l *plot.Legend, c draw.Canvas) {
	l.Top = false
	l.YOffs = 0
	height := l.Rectangle(c).Size().Y
	l.YOffs = (c.Size().Y - height) / 2
}
