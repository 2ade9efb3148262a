package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"StockAssistant/internal/metrics"
	"StockAssistant/internal/model"
)

// ErrNoData means the source answered but returned no bars.
var ErrNoData = errors.New("no price data returned")

// Collector wraps a Fetcher with symbol mapping, normalization and bounded retries.
type Collector struct {
	Fetcher Fetcher
	Suffix  string
	Retries int
	Backoff time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, suffix string, retries int) *Collector {
	return &Collector{Fetcher: fetcher, Suffix: suffix, Retries: retries, Backoff: time.Second}
}

// History fetches daily bars for code in [start, end). Bars are dated at
// midnight WIB, sorted and deduplicated with the last row winning.
func (c *Collector) History(ctx context.Context, code string, start, end time.Time) (*model.PriceSeries, error) {
	symbol := Symbol(code, c.Suffix)
	var (
		bars    []model.OHLCV
		lastErr error
	)
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			backoff := c.Backoff * time.Duration(1<<uint(attempt-1))
			log.Warn().Err(lastErr).Str("symbol", symbol).Int("attempt", attempt+1).
				Dur("backoff", backoff).Msg("fetch failed, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		bars, lastErr = c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
		if lastErr == nil || ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		metrics.FetchTotal.WithLabelValues(c.Fetcher.Name(), "error").Inc()
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), lastErr)
	}

	bars = normalize(bars)
	if len(bars) == 0 {
		metrics.FetchTotal.WithLabelValues(c.Fetcher.Name(), "empty").Inc()
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	metrics.FetchTotal.WithLabelValues(c.Fetcher.Name(), "ok").Inc()
	log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("history fetched")

	return &model.PriceSeries{
		Code:      code,
		Symbol:    symbol,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

func normalize(in []model.OHLCV) []model.OHLCV {
	bars := make([]model.OHLCV, len(in))
	for i, b := range in {
		b.Time = model.DateOf(b.Time)
		bars[i] = b
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
