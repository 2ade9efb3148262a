package calculator

import (
	"math"
	"testing"
	"time"

	"StockAssistant/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, model.WIB)
}

func barsFromCloses(start time.Time, closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func TestRollingMean_MinPeriodsOne(t *testing.T) {
	got, err := RollingMean([]float64{10, 20, 30}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{10, 15, 25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
}

func TestRollingMean_WindowLongerThanSeries(t *testing.T) {
	got, err := RollingMean([]float64{4, 8, 12}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{4, 6, 8}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
}

func TestRollingMean_Edges(t *testing.T) {
	if _, err := RollingMean([]float64{1}, 0); err == nil {
		t.Error("expected error for zero window")
	}
	got, err := RollingMean(nil, 5)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty output, got %v (err=%v)", got, err)
	}
	got, _ = RollingMean([]float64{3, 5}, 1)
	if got[0] != 3 || got[1] != 5 {
		t.Errorf("window 1 should copy input, got %v", got)
	}
}

func TestMovingAverages(t *testing.T) {
	bars := barsFromCloses(day(2024, 1, 1), 1, 2, 3, 4, 5)
	mas, err := MovingAverages(bars, []int{2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mas[3][4]; math.Abs(got-4) > 1e-12 {
		t.Errorf("MA3 last: expected 4, got %.4f", got)
	}
	if got := mas[2][0]; got != 1 {
		t.Errorf("MA2 first: expected 1, got %.4f", got)
	}
}

func TestSubsetFrom(t *testing.T) {
	// Fri 5 Jan, Mon 8 Jan, Tue 9 Jan
	bars := []model.OHLCV{
		{Time: day(2024, 1, 5), Close: 1},
		{Time: day(2024, 1, 8), Close: 2},
		{Time: day(2024, 1, 9), Close: 3},
	}
	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"exact trading day", day(2024, 1, 8), 1},
		{"weekend walks back to friday", day(2024, 1, 7), 0},
		{"after last bar", day(2024, 1, 20), 2},
		{"before first bar", day(2023, 12, 1), 0},
		{"intraday time", time.Date(2024, 1, 9, 15, 30, 0, 0, model.WIB), 2},
	}
	for _, tt := range tests {
		if got := SubsetFrom(bars, tt.start); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestFillCalendarGaps(t *testing.T) {
	bars := []model.OHLCV{
		{Time: day(2024, 1, 5), Close: 100, Volume: 10},
		{Time: day(2024, 1, 8), Close: 110, Volume: 20},
	}
	filled := FillCalendarGaps(bars)
	if len(filled) != 4 {
		t.Fatalf("expected 4 bars, got %d", len(filled))
	}
	for i := 1; i < len(filled); i++ {
		if !filled[i].Time.Equal(filled[i-1].Time.AddDate(0, 0, 1)) {
			t.Errorf("bar %d not one day after previous: %v", i, filled[i].Time)
		}
	}
	if filled[1].Close != 100 || filled[2].Close != 100 || filled[1].Volume != 0 {
		t.Errorf("weekend bars should carry close with zero volume, got %+v", filled[1])
	}
	if filled[3].Close != 110 {
		t.Errorf("expected last close 110, got %.0f", filled[3].Close)
	}
	if FillCalendarGaps(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestCalculate52WeekPosition(t *testing.T) {
	tests := []struct {
		cur, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := Calculate52WeekPosition(tt.cur, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("pos(%.0f,%.0f,%.0f): expected %.2f, got %.2f", tt.cur, tt.high, tt.low, tt.want, got)
		}
	}
	if _, err := Calculate52WeekPosition(1, 1, 2); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestSummarize(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := Summarize(barsFromCloses(day(2024, 1, 1), closes...))
	if s.LastClose != 129 || s.PrevClose != 128 {
		t.Errorf("unexpected last/prev close: %.0f/%.0f", s.LastClose, s.PrevClose)
	}
	if s.High52w != 129 || s.Low52w != 100 {
		t.Errorf("unexpected 52w range: %.0f-%.0f", s.Low52w, s.High52w)
	}
	if s.Position52w != 1 {
		t.Errorf("expected position 1, got %.2f", s.Position52w)
	}
	// monotonically rising closes: no losses
	if s.RSI14 != 100 {
		t.Errorf("expected RSI 100 for rising series, got %.2f", s.RSI14)
	}
}

func TestCalculateRSI_Insufficient(t *testing.T) {
	rsi, err := CalculateRSI(barsFromCloses(day(2024, 1, 1), 1, 2, 3), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 50 {
		t.Errorf("expected default 50, got %.2f", rsi)
	}
}
