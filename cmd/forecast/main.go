package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockAssistant/internal/analyzer"
	"StockAssistant/internal/app"
	"StockAssistant/internal/config"
	"StockAssistant/internal/forecast"
	"StockAssistant/internal/logger"
	"StockAssistant/internal/recorder"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "config file")
		codes    = flag.String("codes", "", "comma separated emiten codes (default: watchlist)")
		order    = flag.Int("order", -1, "override the Fourier order (negative keeps the config value)")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall timeout")
		logLevel = flag.String("log", "warn", "log level")
	)
	flag.Parse()

	logger.Init(*logLevel, true)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *order >= 0 {
		cfg.Forecast.FourierOrder = order
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	list := cfg.Schedule.Watchlist
	if *codes != "" {
		list = strings.Split(*codes, ",")
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "no codes given: pass -codes or set schedule.watchlist")
		return 2
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	type row struct {
		code string
		res  *forecast.Result
		err  error
	}
	rows := make([]row, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, code := range list {
		i, code := i, strings.ToUpper(strings.TrimSpace(code))
		g.Go(func() error {
			res, err := a.Analyzer.Forecast(gctx, code, recorder.TriggerCLI)
			rows[i] = row{code: code, res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Code", "Name", "Last", "Date", "Forecast", "Change %", "RMSE", "Note"})
	failed := 0
	for _, r := range rows {
		name := a.Catalog.Name(r.code)
		if r.err != nil {
			failed++
			t.AppendRow(table.Row{r.code, name, "-", "-", "-", "-", "-", analyzer.Message(r.err)})
			continue
		}
		note := ""
		if r.res.Clamped {
			note = fmt.Sprintf("clamped at %.0f%%", r.res.Cap)
		}
		t.AppendRow(table.Row{
			r.code, name,
			fmt.Sprintf("%.2f", r.res.LastActual),
			r.res.Next.Date.Format(time.DateOnly),
			fmt.Sprintf("%.2f", r.res.Next.Value),
			fmt.Sprintf("%+.2f", r.res.PercentChange),
			fmt.Sprintf("%.2f", r.res.RMSE),
			note,
		})
	}
	t.Render()

	if failed == len(rows) {
		return 1
	}
	return 0
}
