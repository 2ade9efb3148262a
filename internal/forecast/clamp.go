package forecast

import "math"

// Cap returns the auto-rejection limit in percent for a stock trading at
// lastPrice.
func Cap(lastPrice float64) float64 {
	switch {
	case lastPrice > 5000:
		return 20
	case lastPrice > 200:
		return 25
	default:
		return 35
	}
}

// Clamp limits a forecast move to the auto-rejection band of the last price.
// Moves beyond the cap in either direction are set to exactly the cap.
func Clamp(lastPrice, forecast, percentChange float64) (float64, float64, bool) {
	limit := Cap(lastPrice)
	if math.Abs(percentChange) <= limit {
		return forecast, percentChange, false
	}
	if percentChange > 0 {
		return lastPrice * (100 + limit) / 100, limit, true
	}
	return lastPrice * (100 - limit) / 100, -limit, true
}
