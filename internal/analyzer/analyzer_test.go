package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"StockAssistant/internal/catalog"
	"StockAssistant/internal/collector"
	"StockAssistant/internal/forecast"
	"StockAssistant/internal/model"
	"StockAssistant/internal/recorder"
)

type memRecorder struct {
	events []recorder.ForecastEvent
}

func (m *memRecorder) RecordForecast(evt *recorder.ForecastEvent) error {
	m.events = append(m.events, *evt)
	return nil
}

func (m *memRecorder) RecentForecasts(code string, limit int) ([]recorder.ForecastEvent, error) {
	var out []recorder.ForecastEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].Code == code {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *memRecorder) Close() error { return nil }

func newTestAnalyzer(t *testing.T, f *collector.MockFetcher) (*Analyzer, *memRecorder) {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader("Kode,Nama Perusahaan\nBBCA,Bank Central Asia Tbk.\nTLKM,Telkom Indonesia (Persero) Tbk.\n"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	rec := &memRecorder{}
	a := New(cat, collector.NewCollector(f, collector.DefaultSuffix, 0), forecast.New(3), rec,
		time.Date(2021, 1, 1, 0, 0, 0, 0, model.WIB),
		time.Date(2022, 1, 1, 0, 0, 0, 0, model.WIB))
	a.now = func() time.Time { return time.Date(2024, 6, 28, 12, 0, 0, 0, model.WIB) }
	return a, rec
}

func TestAnalyze_WithOverlaysAndForecast(t *testing.T) {
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{Price: 9000})

	start := time.Date(2024, 6, 22, 0, 0, 0, 0, model.WIB) // Saturday
	rep, err := a.Analyze(context.Background(), Request{
		Code:       "bbca",
		Start:      start,
		Indicators: []model.Indicator{model.IndicatorMA20, model.IndicatorVolume, model.IndicatorForecast},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Emiten.Name != "Bank Central Asia Tbk." {
		t.Errorf("unexpected emiten %+v", rep.Emiten)
	}
	if got := rep.Bars[0].Time.Format(time.DateOnly); got != "2024-06-21" {
		t.Errorf("expected walk back to Friday 2024-06-21, got %s", got)
	}
	if len(rep.Bars) != 6 {
		t.Errorf("expected 6 visible bars, got %d", len(rep.Bars))
	}
	if len(rep.MA[20]) != len(rep.Bars) {
		t.Errorf("MA20 length %d does not match bars %d", len(rep.MA[20]), len(rep.Bars))
	}
	if _, ok := rep.MA[50]; ok {
		t.Error("MA50 was not requested")
	}
	if rep.ForecastErr != nil {
		t.Fatalf("unexpected forecast error: %v", rep.ForecastErr)
	}
	if got := rep.Forecast.Next.Date.Format(time.DateOnly); got != "2024-06-29" {
		t.Errorf("expected next date 2024-06-29, got %s", got)
	}
	if rep.Forecast.LastActual != rep.Bars[len(rep.Bars)-1].Close {
		t.Errorf("last actual %.2f != last close %.2f", rep.Forecast.LastActual, rep.Bars[len(rep.Bars)-1].Close)
	}
	if rep.Summary.LastClose != rep.Forecast.LastActual {
		t.Errorf("summary last close %.2f", rep.Summary.LastClose)
	}
	if len(rec.events) != 1 || rec.events[0].Trigger != recorder.TriggerDashboard || rec.events[0].ErrorKind != "" {
		t.Errorf("unexpected recorded events %+v", rec.events)
	}
}

func TestAnalyze_NoForecastRequested(t *testing.T) {
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{Price: 500})
	rep, err := a.Analyze(context.Background(), Request{Code: "TLKM", Start: time.Date(2024, 6, 1, 0, 0, 0, 0, model.WIB)})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Forecast != nil || rep.ForecastErr != nil {
		t.Error("forecast should not run when not requested")
	}
	if len(rec.events) != 0 {
		t.Errorf("expected no recorded forecasts, got %d", len(rec.events))
	}
}

func TestAnalyze_UnknownEmiten(t *testing.T) {
	a, _ := newTestAnalyzer(t, &collector.MockFetcher{Price: 500})
	_, err := a.Analyze(context.Background(), Request{Code: "ZZZZ"})
	if Kind(err) != KindUnknownEmiten {
		t.Errorf("expected unknown_emiten, got %q (%v)", Kind(err), err)
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	a, _ := newTestAnalyzer(t, &collector.MockFetcher{Err: errors.New("connection reset")})
	_, err := a.Analyze(context.Background(), Request{Code: "BBCA"})
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("cause should be kept in %q", err)
	}
}

func TestAnalyze_ShortHistoryKeepsPage(t *testing.T) {
	var bars []model.OHLCV
	for i := 0; i < 5; i++ {
		bars = append(bars, model.OHLCV{Time: time.Date(2024, 6, 24+i, 0, 0, 0, 0, model.WIB), Close: 100 + float64(i), Volume: 10})
	}
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{DailyData: bars})

	rep, err := a.Analyze(context.Background(), Request{
		Code:       "BBCA",
		Start:      time.Date(2024, 6, 1, 0, 0, 0, 0, model.WIB),
		Indicators: []model.Indicator{model.IndicatorForecast, model.IndicatorMA100},
	})
	if err != nil {
		t.Fatalf("analyze should succeed without a forecast: %v", err)
	}
	if len(rep.Bars) != 5 {
		t.Errorf("expected all 5 bars, got %d", len(rep.Bars))
	}
	if !errors.Is(rep.ForecastErr, forecast.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", rep.ForecastErr)
	}
	if len(rec.events) != 1 || rec.events[0].ErrorKind != KindInsufficientHistory {
		t.Errorf("failed attempt should be recorded, got %+v", rec.events)
	}
}

func TestAnalyze_FitFailureKeepsPage(t *testing.T) {
	var bars []model.OHLCV
	for i := 0; i < 60; i++ {
		bars = append(bars, model.OHLCV{Time: time.Date(2024, 4, 1+i, 0, 0, 0, 0, model.WIB), Close: 100 + float64(i), Volume: 10})
	}
	bars[30].Close = math.NaN()
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{DailyData: bars})

	rep, err := a.Analyze(context.Background(), Request{
		Code:       "BBCA",
		Start:      time.Date(2024, 5, 1, 0, 0, 0, 0, model.WIB),
		Indicators: []model.Indicator{model.IndicatorForecast},
	})
	if err != nil {
		t.Fatalf("analyze should succeed without a forecast: %v", err)
	}
	if Kind(rep.ForecastErr) != KindFitError {
		t.Fatalf("expected fit_error, got %q (%v)", Kind(rep.ForecastErr), rep.ForecastErr)
	}
	if !strings.Contains(Message(rep.ForecastErr), "could not be fitted") {
		t.Errorf("unexpected message %q", Message(rep.ForecastErr))
	}
	if len(rec.events) != 1 || rec.events[0].ErrorKind != KindFitError {
		t.Errorf("failed fit should be recorded, got %+v", rec.events)
	}
}

func TestForecast_RecordsTrigger(t *testing.T) {
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{Price: 100})
	res, err := a.Forecast(context.Background(), "tlkm", recorder.TriggerAPI)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if res.Cap != 35 {
		t.Errorf("expected 35%% cap for a sub-200 price, got %.0f", res.Cap)
	}
	hist, err := a.History("TLKM", 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Trigger != recorder.TriggerAPI || hist[0].Forecast != res.Next.Value {
		t.Errorf("unexpected history %+v", hist)
	}
	if len(rec.events) != 1 {
		t.Errorf("expected one event, got %d", len(rec.events))
	}
}

func TestForecast_FetchFailureRecorded(t *testing.T) {
	a, rec := newTestAnalyzer(t, &collector.MockFetcher{Err: errors.New("503")})
	_, err := a.Forecast(context.Background(), "BBCA", recorder.TriggerSchedule)
	if Kind(err) != KindDataUnavailable {
		t.Fatalf("expected data_unavailable, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].ErrorKind != KindDataUnavailable {
		t.Errorf("unexpected events %+v", rec.events)
	}
}

func TestKindAndMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"unknown", fmt.Errorf("lookup: %w", catalog.ErrUnknownEmiten), KindUnknownEmiten},
		{"data", fmt.Errorf("%w: timeout", ErrDataUnavailable), KindDataUnavailable},
		{"deadline", context.DeadlineExceeded, KindDataUnavailable},
		{"short", fmt.Errorf("x: %w", forecast.ErrInsufficientHistory), KindInsufficientHistory},
		{"fit", &forecast.FitError{Rows: 10, Cols: 3, Cause: errors.New("singular")}, KindFitError},
		{"other", errors.New("boom"), KindInternal},
	}
	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
			if Message(tt.err) == "" {
				t.Error("empty message")
			}
		})
		seen[Message(tt.err)] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct messages, got %d", len(seen))
	}
}
