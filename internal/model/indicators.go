package model

// Indicator names a chart overlay the user can toggle.
type Indicator string

const (
	IndicatorVolume   Indicator = "Volume"
	IndicatorForecast Indicator = "Forecast"
	IndicatorMA20     Indicator = "MA20"
	IndicatorMA50     Indicator = "MA50"
	IndicatorMA100    Indicator = "MA100"
)

// AllIndicators lists the overlays in display order.
var AllIndicators = []Indicator{
	IndicatorVolume,
	IndicatorForecast,
	IndicatorMA20,
	IndicatorMA50,
	IndicatorMA100,
}

// Window returns the moving average window, or 0 if i is not an MA.
func (i Indicator) Window() int {
	switch i {
	case IndicatorMA20:
		return 20
	case IndicatorMA50:
		return 50
	case IndicatorMA100:
		return 100
	default:
		return 0
	}
}

// ParseIndicators keeps known names, drops duplicates and preserves order.
func ParseIndicators(names []string) []Indicator {
	seen := make(map[Indicator]bool, len(names))
	out := make([]Indicator, 0, len(names))
	for _, n := range names {
		ind := Indicator(n)
		if seen[ind] || !ind.known() {
			continue
		}
		seen[ind] = true
		out = append(out, ind)
	}
	return out
}

// HasIndicator reports whether want is in list.
func HasIndicator(list []Indicator, want Indicator) bool {
	for _, i := range list {
		if i == want {
			return true
		}
	}
	return false
}

func (i Indicator) known() bool {
	for _, k := range AllIndicators {
		if k == i {
			return true
		}
	}
	return false
}

// Summary holds headline statistics shown next to the chart.
type Summary struct {
	LastClose   float64
	PrevClose   float64
	ChangePct   float64
	High52w     float64
	Low52w      float64
	Position52w float64 // 0.0 ~ 1.0
	RSI14       float64
}
