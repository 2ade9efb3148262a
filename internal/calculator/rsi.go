package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"StockAssistant/internal/model"
)

// CalculateRSI returns the latest Wilder RSI over the given period.
// Returns 50.0 if data is insufficient.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 1 {
		return 0, errors.New("period must be greater than 1")
	}
	if len(bars) < period+1 {
		return 50.0, nil // default when data insufficient
	}
	rsi := talib.Rsi(model.Closes(bars), period)
	return rsi[len(rsi)-1], nil
}
