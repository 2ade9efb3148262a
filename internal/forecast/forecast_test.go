package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockAssistant/internal/model"
)

func dailyBars(start time.Time, closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

// trendSeason is the generating function of the synthetic series: a linear
// trend plus one annual and one semi-annual harmonic.
func trendSeason(pos int, d time.Time) float64 {
	frac := YearFraction(d)
	return 1000 + 0.5*float64(pos+1) + 40*math.Sin(2*math.Pi*frac) + 15*math.Cos(4*math.Pi*frac)
}

func TestForecast_RecoversSyntheticSeries(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, model.WIB)
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = trendSeason(i, start.AddDate(0, 0, i))
	}
	f := &Forecaster{FourierOrder: 2}
	res, err := f.Forecast(dailyBars(start, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nextDate := start.AddDate(0, 0, 400)
	want := trendSeason(400, nextDate)
	if !res.Next.Date.Equal(nextDate) {
		t.Errorf("expected next date %v, got %v", nextDate, res.Next.Date)
	}
	if math.Abs(res.Next.Value-want) > 1e-3 {
		t.Errorf("expected forecast %.4f, got %.4f", want, res.Next.Value)
	}
	if res.RMSE > 1e-6 {
		t.Errorf("expected near-zero RMSE on noiseless data, got %g", res.RMSE)
	}
	if len(res.Fitted) != len(closes) {
		t.Errorf("expected %d fitted values, got %d", len(closes), len(res.Fitted))
	}
	if res.LastActual != closes[len(closes)-1] {
		t.Errorf("expected last actual %.4f, got %.4f", closes[len(closes)-1], res.LastActual)
	}
	if len(res.Terms) != 6 {
		t.Errorf("expected 6 terms, got %v", res.Terms)
	}
}

func TestForecast_WeeklySeasonal(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, model.WIB)
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 500 + float64(i)
		if i%7 == 3 {
			closes[i] += 12
		}
	}
	f := &Forecaster{FourierOrder: 1, WeeklySeasonal: true}
	res, err := f.Forecast(dailyBars(start, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// position 120 has phase 1, which carries no bump
	if math.Abs(res.Next.Value-620) > 1e-4 {
		t.Errorf("expected forecast 620, got %.4f", res.Next.Value)
	}
	if len(res.Terms) != 2+6+2 {
		t.Errorf("expected 10 terms, got %v", res.Terms)
	}
}

func TestForecast_InsufficientHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, model.WIB)
	f := New(12)
	_, err := f.Forecast(dailyBars(start, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if _, err := f.Forecast(nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory for empty input, got %v", err)
	}
}

func TestForecast_IrregularIndex(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, model.WIB)
	bars := dailyBars(start, make([]float64, 30))
	bars[10].Time = bars[10].Time.AddDate(0, 0, 1)
	_, err := New(1).Forecast(bars)
	if !errors.Is(err, ErrIrregularIndex) {
		t.Fatalf("expected ErrIrregularIndex, got %v", err)
	}
}

func TestForecast_ConstantSeriesDropsNothingAndPredictsLevel(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, model.WIB)
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = 250
	}
	res, err := New(3).Forecast(dailyBars(start, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Next.Value-250) > 1e-6 {
		t.Errorf("expected 250, got %.6f", res.Next.Value)
	}
	if math.Abs(res.PercentChange) > 1e-6 {
		t.Errorf("expected zero change, got %.6f", res.PercentChange)
	}
}

func TestForecast_ShortHistoryWithFullFourierOrder(t *testing.T) {
	// Under half a year of data makes the high annual harmonics nearly
	// collinear; the fit must still succeed.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, model.WIB)
	for _, n := range []int{90, 114, 120, 130, 200} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 500 + 0.8*float64(i) + 6*math.Sin(float64(i)*1.7)
		}
		res, err := New(12).Forecast(dailyBars(start, closes))
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if math.IsNaN(res.Next.Value) || res.Next.Value <= 0 {
			t.Errorf("n=%d: unusable forecast %v", n, res.Next.Value)
		}
		if math.Abs(res.PercentChange) > res.Cap+1e-9 {
			t.Errorf("n=%d: change %.2f beyond cap %.0f", n, res.PercentChange, res.Cap)
		}
		if res.RMSE > 20 {
			t.Errorf("n=%d: in-sample RMSE %.2f too large", n, res.RMSE)
		}
	}
}

func TestForecast_FitErrors(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, model.WIB)
	level := func(n int) []float64 {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		return closes
	}

	tests := []struct {
		name   string
		closes func() []float64
	}{
		{"nan close", func() []float64 {
			c := level(100)
			c[50] = math.NaN()
			return c
		}},
		{"zero last close", func() []float64 {
			c := level(100)
			c[99] = 0
			return c
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(2).Forecast(dailyBars(start, tt.closes()))
			if !errors.Is(err, ErrFit) {
				t.Fatalf("expected ErrFit, got res=%+v err=%v", res, err)
			}
			var fe *FitError
			if !errors.As(err, &fe) || fe.Rows != 100 {
				t.Errorf("expected *FitError with 100 rows, got %v", err)
			}
		})
	}
}

func TestFitError_Unwrap(t *testing.T) {
	cause := errors.New("singular")
	err := error(&FitError{Rows: 3, Cols: 3, Cause: cause})
	if !errors.Is(err, ErrFit) || !errors.Is(err, cause) {
		t.Errorf("FitError should match both ErrFit and its cause: %v", err)
	}
}

func TestRMSE(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	if got := RMSE(a, []float64{1, 2, 3, 4}); got != 0 {
		t.Errorf("expected exactly 0, got %g", got)
	}
	if got := RMSE([]float64{0, 0}, []float64{3, 4}); math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("expected sqrt(12.5), got %g", got)
	}
	if got := RMSE(nil, nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %g", got)
	}
}

func TestPercentChange(t *testing.T) {
	if got := PercentChange(100, 110); got != 10.0 {
		t.Errorf("expected 10.0, got %v", got)
	}
	if got := PercentChange(200, 150); got != -25.0 {
		t.Errorf("expected -25.0, got %v", got)
	}
}

func TestYearFraction(t *testing.T) {
	if got := YearFraction(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("expected 0 on Jan 1, got %v", got)
	}
	got := YearFraction(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if math.Abs(got-365.0/366.0) > 1e-12 {
		t.Errorf("expected 365/366 on leap-year Dec 31, got %v", got)
	}
}
