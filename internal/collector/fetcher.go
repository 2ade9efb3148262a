package collector

import (
	"context"
	"strings"
	"time"

	"StockAssistant/internal/model"
)

// DefaultSuffix is the Yahoo exchange suffix for IDX listings.
const DefaultSuffix = ".JK"

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns daily bars for symbol between start and end, in
	// any order.
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// Symbol turns an emiten code into the exchange-suffixed ticker.
func Symbol(code, suffix string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if suffix == "" || strings.HasSuffix(code, strings.ToUpper(suffix)) {
		return code
	}
	return code + strings.ToUpper(suffix)
}
