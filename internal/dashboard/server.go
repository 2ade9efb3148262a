// Package dashboard serves the web UI and JSON API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"StockAssistant/internal/analyzer"
	"StockAssistant/internal/chart"
	"StockAssistant/internal/dashboard/ui"
	"StockAssistant/internal/metrics"
)

// Config wires a Server.
type Config struct {
	Addr         string
	Analyzer     *analyzer.Analyzer
	Renderer     *chart.Renderer
	LookbackDays int
	FourierOrder int
}

// Server is the dashboard HTTP server.
type Server struct {
	addr     string
	an       *analyzer.Analyzer
	renderer *chart.Renderer
	lookback int
	order    int
	router   *gin.Engine
	now      func() time.Time
}

// NewServer builds the router and parses the embedded templates.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8501"
	}
	if cfg.Renderer == nil {
		cfg.Renderer = chart.NewRenderer("")
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 7
	}

	tmpl, err := ui.Templates(templateFuncs)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	staticFS, err := ui.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(), countRequests())
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", staticFS)

	s := &Server{
		addr:     cfg.Addr,
		an:       cfg.Analyzer,
		renderer: cfg.Renderer,
		lookback: cfg.LookbackDays,
		order:    cfg.FourierOrder,
		router:   router,
		now:      time.Now,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/notes", s.handleNotes)
	s.router.GET("/chart", s.handleChart)
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/emitens", s.handleEmitens)
	api.GET("/forecast/:code", s.handleForecast)
	api.GET("/forecast/:code/history", s.handleForecastHistory)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server and blocks until ctx is cancelled or it fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		log.Info().Msg("dashboard stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch analyzer.Kind(err) {
	case analyzer.KindUnknownEmiten:
		return http.StatusNotFound
	case analyzer.KindDataUnavailable:
		return http.StatusBadGateway
	case analyzer.KindInsufficientHistory, analyzer.KindFitError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var templateFuncs = template.FuncMap{
	"price":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":    func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
	"date":   func(t time.Time) string { return t.Format(time.DateOnly) },
	"mul100": func(v float64) float64 { return v * 100 },
}
