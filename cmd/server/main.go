package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockAssistant/internal/app"
	"StockAssistant/internal/chart"
	"StockAssistant/internal/config"
	"StockAssistant/internal/dashboard"
	"StockAssistant/internal/logger"
	"StockAssistant/internal/notifier"
	"StockAssistant/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("stock assistant starting")

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := dashboard.NewServer(dashboard.Config{
		Addr:         cfg.Server.Addr,
		Analyzer:     a.Analyzer,
		Renderer:     chart.NewRenderer(cfg.Chart.Theme),
		LookbackDays: cfg.Chart.LookbackDays,
		FourierOrder: cfg.ForecastOrder(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init dashboard")
	}

	var (
		notify notifier.Notifier = notifier.NoopNotifier{}
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tn
	}

	sched := scheduler.NewScheduler(ctx, a.Analyzer, notify, cfg.Schedule.Watchlist)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
		log.Info().Msg("telegram polling started")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running daily task now")
		g.Go(func() error {
			sched.RunDailyNow()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stock assistant stopped with error")
		return
	}
	log.Info().Msg("stock assistant stopped")
}
