// Package analyzer ties the catalog, price history, indicators and the
// forecaster together for one emiten.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"StockAssistant/internal/calculator"
	"StockAssistant/internal/catalog"
	"StockAssistant/internal/collector"
	"StockAssistant/internal/forecast"
	"StockAssistant/internal/metrics"
	"StockAssistant/internal/model"
	"StockAssistant/internal/recorder"
)

// Request selects what to analyze.
type Request struct {
	Code       string
	Start      time.Time
	Indicators []model.Indicator
	Trigger    recorder.Trigger
}

// Report is everything the dashboard needs to draw one emiten.
type Report struct {
	Emiten     model.Emiten
	Start      time.Time
	Bars       []model.OHLCV
	MA         map[int][]float64
	Summary    model.Summary
	Indicators []model.Indicator

	// Forecast is nil when it was not requested or failed; ForecastErr says which.
	Forecast    *forecast.Result
	ForecastErr error
}

// Analyzer serves reports and forecasts.
type Analyzer struct {
	Catalog       *catalog.Catalog
	Collector     *collector.Collector
	Forecaster    *forecast.Forecaster
	Recorder      recorder.Recorder
	HistoryStart  time.Time
	ForecastStart time.Time

	now func() time.Time
}

// New creates an Analyzer. A nil recorder disables forecast history.
func New(cat *catalog.Catalog, col *collector.Collector, fc *forecast.Forecaster,
	rec recorder.Recorder, historyStart, forecastStart time.Time) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{
		Catalog:       cat,
		Collector:     col,
		Forecaster:    fc,
		Recorder:      rec,
		HistoryStart:  historyStart,
		ForecastStart: forecastStart,
		now:           time.Now,
	}
}

// Analyze fetches the full chart history once, computes the overlays on it and
// cuts everything down to the bars visible from req.Start. A failed forecast
// is reported in Report.ForecastErr and does not fail the call.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	em, err := a.Catalog.Lookup(req.Code)
	if err != nil {
		return nil, err
	}
	bars, err := a.history(ctx, em.Code, a.HistoryStart)
	if err != nil {
		return nil, err
	}

	from := calculator.SubsetFrom(bars, req.Start)
	rep := &Report{
		Emiten:     em,
		Start:      req.Start,
		Bars:       bars[from:],
		MA:         make(map[int][]float64),
		Summary:    calculator.Summarize(bars),
		Indicators: req.Indicators,
	}

	var windows []int
	for _, ind := range req.Indicators {
		if w := ind.Window(); w > 0 {
			windows = append(windows, w)
		}
	}
	if len(windows) > 0 {
		mas, err := calculator.MovingAverages(bars, windows)
		if err != nil {
			return nil, fmt.Errorf("moving averages for %s: %w", em.Code, err)
		}
		for w, series := range mas {
			rep.MA[w] = series[from:]
		}
	}

	if model.HasIndicator(req.Indicators, model.IndicatorForecast) {
		trigger := req.Trigger
		if trigger == "" {
			trigger = recorder.TriggerDashboard
		}
		rep.Forecast, rep.ForecastErr = a.forecastBars(em.Code, bars, trigger)
		if rep.ForecastErr != nil {
			log.Warn().Err(rep.ForecastErr).Str("code", em.Code).Str("kind", Kind(rep.ForecastErr)).
				Msg("forecast unavailable")
		}
	}
	return rep, nil
}

// Forecast predicts the next close for code from the forecast window of its
// history. Every attempt, failed or not, is recorded.
func (a *Analyzer) Forecast(ctx context.Context, code string, trigger recorder.Trigger) (*forecast.Result, error) {
	em, err := a.Catalog.Lookup(code)
	if err != nil {
		return nil, err
	}
	bars, err := a.history(ctx, em.Code, a.ForecastStart)
	if err != nil {
		a.record(em.Code, trigger, nil, err)
		return nil, err
	}
	return a.forecastBars(em.Code, bars, trigger)
}

// History returns the recorded forecasts for code, newest first.
func (a *Analyzer) History(code string, limit int) ([]recorder.ForecastEvent, error) {
	em, err := a.Catalog.Lookup(code)
	if err != nil {
		return nil, err
	}
	return a.Recorder.RecentForecasts(em.Code, limit)
}

func (a *Analyzer) history(ctx context.Context, code string, start time.Time) ([]model.OHLCV, error) {
	end := model.DateOf(a.now()).AddDate(0, 0, 1)
	series, err := a.Collector.History(ctx, code, start, end)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return series.Bars, nil
}

func (a *Analyzer) forecastBars(code string, bars []model.OHLCV, trigger recorder.Trigger) (*forecast.Result, error) {
	from := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(a.ForecastStart) })
	window := bars[from:]
	if len(window) == 0 {
		err := fmt.Errorf("%w: no bars since %s", ErrDataUnavailable, a.ForecastStart.Format(time.DateOnly))
		a.record(code, trigger, nil, err)
		return nil, err
	}

	began := time.Now()
	res, err := a.Forecaster.Forecast(calculator.FillCalendarGaps(window))
	metrics.ForecastDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		err = fmt.Errorf("forecast %s: %w", code, err)
	}
	a.record(code, trigger, res, err)
	if err != nil {
		return nil, err
	}

	log.Info().Str("code", code).Float64("last", res.LastActual).Float64("next", res.Next.Value).
		Float64("pct", res.PercentChange).Bool("clamped", res.Clamped).Msg("forecast computed")
	return res, nil
}

func (a *Analyzer) record(code string, trigger recorder.Trigger, res *forecast.Result, err error) {
	evt := &recorder.ForecastEvent{Code: code, Trigger: trigger, Timestamp: a.now()}
	if err != nil {
		evt.ErrorKind = Kind(err)
		evt.ErrorMsg = err.Error()
		metrics.ForecastTotal.WithLabelValues(evt.ErrorKind).Inc()
	} else {
		evt.TargetDate = res.Next.Date
		evt.LastClose = res.LastActual
		evt.Forecast = res.Next.Value
		evt.PercentChange = res.PercentChange
		evt.RMSE = res.RMSE
		evt.Clamped = res.Clamped
		metrics.ForecastTotal.WithLabelValues("ok").Inc()
	}
	if rerr := a.Recorder.RecordForecast(evt); rerr != nil {
		log.Error().Err(rerr).Str("code", code).Msg("record forecast")
	}
}
