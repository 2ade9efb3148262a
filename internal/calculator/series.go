package calculator

import (
	"sort"
	"time"

	"StockAssistant/internal/model"
)

// SubsetFrom returns the index of the first bar to display for a requested
// start date. When start is not a trading day it walks back to the closest
// earlier session; when start precedes all data it returns 0.
func SubsetFrom(bars []model.OHLCV, start time.Time) int {
	day := model.DateOf(start)
	// first bar strictly after day
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Time.After(day) })
	if i == 0 {
		return 0
	}
	return i - 1
}

// FillCalendarGaps forward-fills missing calendar days so the result has
// exactly one bar per day. Filled bars repeat the previous close with zero
// volume. Input must be sorted by date.
func FillCalendarGaps(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	out := make([]model.OHLCV, 0, len(bars)+len(bars)/2)
	out = append(out, bars[0])
	for _, b := range bars[1:] {
		prev := out[len(out)-1]
		for next := prev.Time.AddDate(0, 0, 1); next.Before(b.Time); next = next.AddDate(0, 0, 1) {
			out = append(out, model.OHLCV{
				Time:  next,
				Open:  prev.Close,
				High:  prev.Close,
				Low:   prev.Close,
				Close: prev.Close,
			})
		}
		out = append(out, b)
	}
	return out
}
