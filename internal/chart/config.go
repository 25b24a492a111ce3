package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
)

// RGB is a colour with channels normalised to [0,1].
type RGB [3]float64

// Color converts c to an opaque 8-bit colour.
func (c RGB) Color() color.Color {
	ch := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: 255}
}

// Hex renders c as "#RRGGBB".
func (c RGB) Hex() string {
	rgba := c.Color().(color.RGBA)
	const digits = "0123456789ABCDEF"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{rgba.R, rgba.G, rgba.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0F]
	}
	return string(b)
}

// tableau20 is the Tableau 20 colour scale in 8-bit RGB.
var tableau20 = [20][3]uint8{
	{31, 119, 180}, {174, 199, 232}, {255, 127, 14}, {255, 187, 120},
	{44, 160, 44}, {152, 223, 138}, {214, 39, 40}, {255, 152, 150},
	{148, 103, 189}, {197, 176, 213}, {140, 86, 75}, {196, 156, 148},
	{227, 119, 194}, {247, 182, 210}, {127, 127, 127}, {199, 199, 199},
	{188, 189, 34}, {219, 219, 141}, {23, 190, 207}, {158, 218, 229},
}

// Tableau20 returns the Tableau 20 palette rescaled to [0,1].
func Tableau20() []RGB {
	p := make([]RGB, len(tableau20))
	for i, c := range tableau20 {
		p[i] = RGB{float64(c[0]) / 255, float64(c[1]) / 255, float64(c[2]) / 255}
	}
	return p
}

// RenderConfig carries every presentation setting of the charts.
type RenderConfig struct {
	TickLabelSize vg.Length
	LegendSize    vg.Length

	BarWidth, BarHeight         vg.Length
	StackedWidth, StackedHeight vg.Length
	// LegendWidth is carved out of StackedWidth to the right of the plot.
	LegendWidth vg.Length

	BarColor RGB
	Palette  []RGB
}

// DefaultRenderConfig mirrors the figure sizes and fonts of the reference
// notebook: a 10x5in bar chart with 12pt ticks and a 15x10in stacked
// chart with 15pt ticks.
func DefaultRenderConfig() RenderConfig {
	palette := Tableau20()
	return RenderConfig{
		TickLabelSize: vg.Points(12),
		LegendSize:    vg.Points(11),
		BarWidth:      10 * vg.Inch,
		BarHeight:     5 * vg.Inch,
		StackedWidth:  15 * vg.Inch,
		StackedHeight: 10 * vg.Inch,
		LegendWidth:   4 * vg.Inch,
		BarColor:      palette[0],
		Palette:       palette,
	}
}

// StackedTickLabelSize is the tick size of the stacked chart.
func (c RenderConfig) StackedTickLabelSize() vg.Length {
	return c.TickLabelSize * 15 / 12
}

// SeriesColor picks the palette colour for series i, cycling when there
// are more series than colours.
func (c RenderConfig) SeriesColor(i int) RGB {
	if len(c.Palette) == 0 {
		return c.BarColor
	}
	return c.Palette[i%len(c.Palette)]
}
