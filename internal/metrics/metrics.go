// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockassistant_fetch_total", Help: "Price history fetches by source and result"},
		[]string{"source", "result"},
	)
	ForecastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockassistant_forecast_total", Help: "Forecast attempts by outcome"},
		[]string{"outcome"},
	)
	ForecastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockassistant_forecast_duration_seconds",
		Help:    "Time spent fitting the forecast regression",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockassistant_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal, ForecastTotal, ForecastDuration, HTTPRequests)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
