package forecast

import (
	"fmt"
	"math"
	"time"
)

// weekPeriod is the seasonal period of a regular daily index.
const weekPeriod = 7

// terms describes the deterministic regressors of the model. Column order is
// constant, trend, weekly dummies, then sin/cos pairs per harmonic.
type terms struct {
	fourierOrder int
	weekly       bool
}

func (t terms) width() int {
	n := 2 + 2*t.fourierOrder
	if t.weekly {
		n += weekPeriod - 1
	}
	return n
}

func (t terms) names() []string {
	names := []string{"const", "trend"}
	if t.weekly {
		for k := 2; k <= weekPeriod; k++ {
			names = append(names, fmt.Sprintf("s(%d,%d)", k, weekPeriod))
		}
	}
	for k := 1; k <= t.fourierOrder; k++ {
		names = append(names, fmt.Sprintf("sin(%d,A)", k), fmt.Sprintf("cos(%d,A)", k))
	}
	return names
}

// row fills dst with the regressors for the observation at 0-based position
// pos dated d.
func (t terms) row(dst []float64, pos int, d time.Time) {
	dst[0] = 1
	dst[1] = float64(pos + 1)
	c := 2
	if t.weekly {
		phase := pos % weekPeriod
		for k := 1; k < weekPeriod; k++ {
			if phase == k {
				dst[c] = 1
			} else {
				dst[c] = 0
			}
			c++
		}
	}
	frac := YearFraction(d)
	for k := 1; k <= t.fourierOrder; k++ {
		arg := 2 * math.Pi * float64(k) * frac
		dst[c] = math.Sin(arg)
		dst[c+1] = math.Cos(arg)
		c += 2
	}
}

// YearFraction returns how far into its calendar year d lies, in [0, 1).
func YearFraction(d time.Time) float64 {
	y := d.Year()
	days := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC).Sub(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24
	return float64(d.YearDay()-1) / days
}
