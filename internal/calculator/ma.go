package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"StockAssistant/internal/model"
)

// RollingMean computes a windowed mean with a minimum of one observation:
// the first window-1 outputs average whatever history exists so far instead
// of being left empty.
func RollingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	if window == 1 {
		copy(out, values)
		return out, nil
	}

	head := window - 1
	if head > len(values) {
		head = len(values)
	}
	sum := 0.0
	for i := 0; i < head; i++ {
		sum += values[i]
		out[i] = sum / float64(i+1)
	}
	if len(values) < window {
		return out, nil
	}

	full := talib.Sma(values, window)
	copy(out[head:], full[head:])
	return out, nil
}

// MovingAverages computes the close-price rolling mean for each window over
// the whole series. Keys are the window lengths.
func MovingAverages(bars []model.OHLCV, windows []int) (map[int][]float64, error) {
	closes := model.Closes(bars)
	out := make(map[int][]float64, len(windows))
	for _, w := range windows {
		ma, err := RollingMean(closes, w)
		if err != nil {
			return nil, err
		}
		out[w] = ma
	}
	return out, nil
}
