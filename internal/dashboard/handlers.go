package dashboard

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"StockAssistant/internal/analyzer"
	"StockAssistant/internal/chart"
	"StockAssistant/internal/forecast"
	"StockAssistant/internal/model"
	"StockAssistant/internal/recorder"
)

const (
	tabTechnical   = "technical"
	tabFundamental = "fundamental"
)

type indicatorOption struct {
	Name    string
	Checked bool
}

// pageView feeds the HTML templates.
type pageView struct {
	Page          string
	Emitens       []model.Emiten
	Code          string
	Name          string
	Start         string
	Tab           string
	Indicators    []model.Indicator
	Options       []indicatorOption
	ChartHTML     string
	Forecast      *forecast.Result
	ForecastMsg   string
	Summary       model.Summary
	Error         string
	FourierOrder  int
	ForecastStart string
}

// TabLink keeps the current selection while switching tabs.
func (v pageView) TabLink(tab string) string {
	q := url.Values{}
	q.Set("code", v.Code)
	q.Set("start", v.Start)
	q.Set("tab", tab)
	for _, ind := range v.Indicators {
		q.Add("ind", string(ind))
	}
	return "/?" + q.Encode()
}

// selection is the parsed page query.
type selection struct {
	code       string
	start      time.Time
	indicators []model.Indicator
	tab        string
}

func (s *Server) parseSelection(c *gin.Context) (selection, error) {
	sel := selection{
		code:       strings.ToUpper(strings.TrimSpace(c.Query("code"))),
		indicators: model.ParseIndicators(c.QueryArray("ind")),
		tab:        tabTechnical,
	}
	if sel.code == "" {
		if codes := s.an.Catalog.Codes(); len(codes) > 0 {
			sel.code = codes[0]
		}
	}
	if c.Query("tab") == tabFundamental {
		sel.tab = tabFundamental
	}

	sel.start = model.DateOf(s.now()).AddDate(0, 0, -s.lookback)
	if v := c.Query("start"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, model.WIB)
		if err != nil {
			return sel, err
		}
		sel.start = d
	}
	return sel, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	view := pageView{
		Page:    "analysis",
		Emitens: s.an.Catalog.List(),
		Tab:     tabTechnical,
	}

	sel, err := s.parseSelection(c)
	view.Code = sel.code
	view.Name = s.an.Catalog.Name(sel.code)
	view.Start = sel.start.Format(time.DateOnly)
	view.Tab = sel.tab
	view.Indicators = sel.indicators
	for _, ind := range model.AllIndicators {
		view.Options = append(view.Options, indicatorOption{Name: string(ind), Checked: model.HasIndicator(sel.indicators, ind)})
	}
	if err != nil {
		view.Error = "Start date must look like 2024-01-31."
		c.HTML(http.StatusBadRequest, "index", view)
		return
	}

	rep, err := s.an.Analyze(c.Request.Context(), analyzer.Request{
		Code:       sel.code,
		Start:      sel.start,
		Indicators: sel.indicators,
		Trigger:    recorder.TriggerDashboard,
	})
	if err != nil {
		log.Warn().Err(err).Str("code", sel.code).Msg("analysis failed")
		view.Error = analyzer.Message(err)
		c.HTML(statusFor(err), "index", view)
		return
	}

	view.Name = rep.Emiten.Name
	view.Summary = rep.Summary
	view.Forecast = rep.Forecast
	if rep.ForecastErr != nil {
		view.ForecastMsg = analyzer.Message(rep.ForecastErr)
	}
	if sel.tab == tabTechnical {
		var buf bytes.Buffer
		if err := s.renderer.Render(&buf, chartInput(rep)); err != nil {
			log.Error().Err(err).Str("code", sel.code).Msg("render chart")
			view.Error = "The chart could not be drawn."
		}
		view.ChartHTML = buf.String()
	}
	c.HTML(http.StatusOK, "index", view)
}

func (s *Server) handleNotes(c *gin.Context) {
	c.HTML(http.StatusOK, "notes", pageView{
		Page:          "notes",
		FourierOrder:  s.order,
		ForecastStart: s.an.ForecastStart.Format(time.DateOnly),
	})
}

func (s *Server) handleChart(c *gin.Context) {
	sel, err := s.parseSelection(c)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid start date")
		return
	}
	rep, err := s.an.Analyze(c.Request.Context(), analyzer.Request{
		Code:       sel.code,
		Start:      sel.start,
		Indicators: sel.indicators,
		Trigger:    recorder.TriggerDashboard,
	})
	if err != nil {
		c.String(statusFor(err), analyzer.Message(err))
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, chartInput(rep)); err != nil {
		c.String(http.StatusInternalServerError, "The chart could not be drawn.")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func chartInput(rep *analyzer.Report) chart.Input {
	return chart.Input{
		Title:      rep.Emiten.Code + " - " + rep.Emiten.Name,
		Bars:       rep.Bars,
		MA:         rep.MA,
		ShowVolume: model.HasIndicator(rep.Indicators, model.IndicatorVolume),
		Forecast:   rep.Forecast,
	}
}

func (s *Server) handleEmitens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"emitens": s.an.Catalog.List()})
}

func (s *Server) handleForecast(c *gin.Context) {
	code := c.Param("code")
	res, err := s.an.Forecast(c.Request.Context(), code, recorder.TriggerAPI)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": analyzer.Message(err), "kind": analyzer.Kind(err)})
		return
	}
	if c.Query("fitted") != "true" {
		trimmed := *res
		trimmed.Fitted = nil
		res = &trimmed
	}
	em, err := s.an.Catalog.Lookup(code)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": analyzer.Message(err), "kind": analyzer.Kind(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": em.Code, "name": em.Name, "forecast": res})
}

func (s *Server) handleForecastHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	events, err := s.an.History(c.Param("code"), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": analyzer.Message(err), "kind": analyzer.Kind(err)})
		return
	}
	if events == nil {
		events = []recorder.ForecastEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}
