// Package chart draws the price chart with its optional overlays.
package chart

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockAssistant/internal/forecast"
	"StockAssistant/internal/model"
)

const (
	colorClose    = "red"
	colorVolume   = "yellow"
	colorForecast = "lime"
)

// maColors are used in ascending window order.
var maColors = []string{"#5470c6", "#ee6666", "#fac858"}

// Input is one chart's data. MA series must be aligned with Bars.
type Input struct {
	Title      string
	Bars       []model.OHLCV
	MA         map[int][]float64
	ShowVolume bool
	Forecast   *forecast.Result
}

// Renderer renders charts with a theme chosen once at startup.
type Renderer struct {
	Theme  string
	Width  string
	Height string
}

// NewRenderer returns a full-width renderer for theme.
func NewRenderer(theme string) *Renderer {
	return &Renderer{Theme: theme, Width: "100%", Height: "520px"}
}

// Render writes a standalone HTML page holding the chart.
func (r *Renderer) Render(w io.Writer, in Input) error {
	if len(in.Bars) == 0 {
		return fmt.Errorf("chart %q: no bars", in.Title)
	}

	dates := make([]string, len(in.Bars), len(in.Bars)+1)
	for i, b := range in.Bars {
		dates[i] = b.Time.Format(time.DateOnly)
	}
	if in.Forecast != nil {
		dates = append(dates, in.Forecast.Next.Date.Format(time.DateOnly))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: in.Title,
			Theme:     r.Theme,
			Width:     r.Width,
			Height:    r.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: in.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price", Scale: opts.Bool(true)}),
	)
	line.SetXAxis(dates)

	closes := make([]opts.LineData, len(dates))
	for i := range dates {
		closes[i] = opts.LineData{Value: nil}
		if i < len(in.Bars) {
			closes[i].Value = in.Bars[i].Close
		}
	}
	line.AddSeries("Close", closes,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorClose, Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorClose}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	windows := make([]int, 0, len(in.MA))
	for w := range in.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for i, w := range windows {
		color := maColors[i%len(maColors)]
		line.AddSeries(fmt.Sprintf("MA%d", w), padded(in.MA[w], len(dates)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}

	if fc := in.Forecast; fc != nil {
		// Segment from the last close to the next-day value; null elsewhere.
		seg := make([]opts.LineData, len(dates))
		for i := range seg {
			seg[i] = opts.LineData{Value: nil}
		}
		seg[len(dates)-2].Value = fc.LastActual
		seg[len(dates)-1].Value = fc.Next.Value
		line.AddSeries("Forecast", seg,
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorForecast, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorForecast}),
		)
	}

	if in.ShowVolume {
		line.ExtendYAxis(opts.YAxis{Name: "Volume", Show: opts.Bool(true), SplitLine: &opts.SplitLine{Show: opts.Bool(false)}})
		vol := make([]opts.BarData, len(dates))
		for i := range dates {
			vol[i] = opts.BarData{Value: nil}
			if i < len(in.Bars) {
				vol[i].Value = in.Bars[i].Volume
			}
		}
		bar := charts.NewBar()
		bar.SetXAxis(dates)
		bar.AddSeries("Volume", vol,
			charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorVolume}),
		)
		line.Overlap(bar)
	}

	return line.Render(w)
}

func padded(values []float64, n int) []opts.LineData {
	out := make([]opts.LineData, n)
	for i := range out {
		out[i] = opts.LineData{Value: nil}
		if i < len(values) {
			out[i].Value = values[i]
		}
	}
	return out
}
