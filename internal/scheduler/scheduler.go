package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockAssistant/internal/analyzer"
	"StockAssistant/internal/model"
	"StockAssistant/internal/notifier"
	"StockAssistant/internal/recorder"
)

// maxParallel bounds concurrent watchlist fetches.
const maxParallel = 4

// Scheduler runs the daily watchlist forecast and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Analyzer
	Notifier  notifier.Notifier
	Watchlist []string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A nil notifier drops messages.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, n notifier.Notifier, watchlist []string) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(model.WIB)),
		Analyzer:  an,
		Notifier:  n,
		Watchlist: watchlist,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily digest task. Expressions carry a seconds field.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("watchlist", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately.
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Info().Strs("watchlist", s.Watchlist).Msg("running daily forecast task")
	if len(s.Watchlist) == 0 {
		return
	}
	digest := s.Digest(s.Ctx, recorder.TriggerSchedule)
	s.trySend(digest)
}

// Digest forecasts every watchlist code and formats the results. Failures
// become digest lines instead of aborting the run.
func (s *Scheduler) Digest(ctx context.Context, trigger recorder.Trigger) string {
	lines := make([]notifier.DigestLine, len(s.Watchlist))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, code := range s.Watchlist {
		i, code := i, code
		g.Go(func() error {
			line := notifier.DigestLine{Emiten: model.Emiten{Code: strings.ToUpper(code)}}
			if em, err := s.Analyzer.Catalog.Lookup(code); err == nil {
				line.Emiten = em
			}
			res, err := s.Analyzer.Forecast(gctx, code, trigger)
			if err != nil {
				log.Warn().Err(err).Str("code", code).Msg("watchlist forecast failed")
				line.Err = analyzer.Message(err)
			}
			line.Result = res
			lines[i] = line
			return nil
		})
	}
	_ = g.Wait()
	return notifier.FormatDigest(time.Now().In(model.WIB), lines)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats address commands as /cmd@botname.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "/forecast":
		if arg == "" {
			return "Usage: /forecast CODE"
		}
		em, err := s.Analyzer.Catalog.Lookup(arg)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", strings.ToUpper(arg), analyzer.Message(err))
		}
		res, err := s.Analyzer.Forecast(ctx, em.Code, recorder.TriggerCommand)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", em.Code, analyzer.Message(err))
		}
		return notifier.FormatForecast(em, res)
	case "/emiten":
		if arg == "" {
			return "Usage: /emiten CODE"
		}
		em, err := s.Analyzer.Catalog.Lookup(arg)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", strings.ToUpper(arg), analyzer.Message(err))
		}
		return notifier.FormatEmiten(em)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return s.Digest(ctx, recorder.TriggerCommand)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
