// Package app builds the shared service graph from configuration.
package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"StockAssistant/internal/analyzer"
	"StockAssistant/internal/catalog"
	"StockAssistant/internal/collector"
	"StockAssistant/internal/config"
	"StockAssistant/internal/forecast"
	"StockAssistant/internal/recorder"
)

// App is the analysis stack shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Analyzer *analyzer.Analyzer
	Recorder recorder.Recorder
}

// NewFetcher picks the market data source named by the config.
func NewFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout)
	case "mock":
		return &collector.MockFetcher{Price: 1000}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, ds.Timeout)
	}
}

// NewForecaster applies the forecast section of the config.
func NewForecaster(cfg *config.Config) *forecast.Forecaster {
	fc := forecast.New(cfg.ForecastOrder())
	fc.WeeklySeasonal = cfg.Forecast.WeeklySeasonal
	if cfg.Forecast.AutoRejection != nil {
		fc.AutoRejection = *cfg.Forecast.AutoRejection
	}
	return fc
}

// New loads the catalog and wires the analyzer. A recorder that fails to
// open is replaced by a no-op one so the dashboard still serves.
func New(cfg *config.Config) (*App, error) {
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info().Int("emitens", cat.Len()).Str("path", cfg.Catalog.Path).Msg("catalog loaded")

	historyStart, err := cfg.HistoryStart()
	if err != nil {
		return nil, err
	}
	forecastStart, err := cfg.ForecastStart()
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, cfg.DataSource.Suffix, cfg.DataSource.Retries)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	an := analyzer.New(cat, col, NewForecaster(cfg), rec, historyStart, forecastStart)
	return &App{Config: cfg, Catalog: cat, Analyzer: an, Recorder: rec}, nil
}

// Close releases the recorder.
func (a *App) Close() error {
	return a.Recorder.Close()
}
