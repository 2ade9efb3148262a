package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"StockAssistant/internal/forecast"
	"StockAssistant/internal/model"
)

func sampleBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:   time.Date(2024, 6, 3+i, 0, 0, 0, 0, model.WIB),
			Close:  9000 + float64(i)*10,
			Volume: 1000 + float64(i),
		}
	}
	return bars
}

func TestRender_AllOverlays(t *testing.T) {
	bars := sampleBars(5)
	in := Input{
		Title:      "BBCA - Bank Central Asia Tbk.",
		Bars:       bars,
		MA:         map[int][]float64{50: {1, 2, 3, 4, 5}, 20: {1, 2, 3, 4, 5}},
		ShowVolume: true,
		Forecast: &forecast.Result{
			Next:       forecast.Point{Date: time.Date(2024, 6, 8, 0, 0, 0, 0, model.WIB), Value: 9100},
			LastActual: 9040,
		},
	}
	var buf bytes.Buffer
	if err := NewRenderer("chalk").Render(&buf, in); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Close", "MA20", "MA50", "Volume", "Forecast", "2024-06-08", "chalk", "lime"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, "MA20") > strings.Index(out, "MA50") {
		t.Error("moving averages should be ordered by window")
	}
}

func TestRender_PriceOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer("").Render(&buf, Input{Title: "TLKM", Bars: sampleBars(3)}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `"Volume"`) || strings.Contains(out, `"Forecast"`) {
		t.Error("unrequested overlays rendered")
	}
	if strings.Contains(out, "2024-06-06") {
		t.Error("x axis should not be extended without a forecast")
	}
}

func TestRender_NoBars(t *testing.T) {
	if err := NewRenderer("chalk").Render(&bytes.Buffer{}, Input{Title: "X"}); err == nil {
		t.Error("expected error for empty input")
	}
}
