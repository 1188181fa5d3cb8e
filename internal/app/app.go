// Package app wires the bot together and runs it in the configured mode.
package app

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/config"
	"github.com/mkulikov/SST-bot/internal/mgm"
	"github.com/mkulikov/SST-bot/internal/scheduler"
	"github.com/mkulikov/SST-bot/internal/store"
	"github.com/mkulikov/SST-bot/internal/telegram"
)

const (
	// clientTimeout bounds every outbound Telegram call so a stuck send
	// cannot wedge a fire.
	clientTimeout = 10 * time.Second
	// pollHoldSeconds is the long-poll hold requested from Telegram. It must
	// finish inside clientTimeout or every quiet poll aborts client-side and
	// the update loop degrades to an error/retry cycle.
	pollHoldSeconds = 5
)

// App owns process-lifetime resources: the bot client, the store, the
// scheduler and the HTTP server.
type App struct {
	cfg    config.Config
	log    *zap.Logger
	bot    *tgbotapi.BotAPI
	loc    *time.Location
	repo   store.Repo
	router *telegram.Router
	sched  scheduler.Scheduler
	sweep  *scheduler.Sweep // set in webhook mode
}

// New authorizes the Telegram client. Stores and schedulers are opened in Run
// so their lifetime matches the run context.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	httpClient := &http.Client{Timeout: clientTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot, loc: loc}, nil
}

// Run builds the remaining components and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.repo = repo
	defer func() { _ = a.repo.Close() }()

	provider := mgm.NewClient()
	sender := telegram.NewBotSender(a.bot)
	dispatch := scheduler.NewDispatcher(a.repo, provider, sender, a.cfg.Region, a.log)

	switch a.cfg.RunMode {
	case config.ModeWebhook:
		a.sweep = scheduler.NewSweep(a.loc, a.repo, dispatch, a.log)
		a.sched = a.sweep
	default:
		a.sched = scheduler.NewCron(a.loc, a.repo, dispatch, a.log)
	}

	a.router = telegram.NewRouter(sender, a.repo, a.sched, provider, a.cfg.Region, a.cfg.TZ, a.log)

	if err := a.sched.RebuildAll(ctx); err != nil {
		return fmt.Errorf("rebuild schedule: %w", err)
	}

	a.log.Info("starting sst-bot",
		zap.String("mode", a.cfg.RunMode),
		zap.String("store", a.cfg.Store),
		zap.String("tz", a.cfg.TZ),
	)

	if a.cfg.RunMode == config.ModeWebhook {
		return a.runWebhook(ctx)
	}
	return a.runPolling(ctx)
}

func (a *App) openStore(ctx context.Context) (store.Repo, error) {
	switch a.cfg.Store {
	case config.StoreRedis:
		return store.OpenRedis(ctx, a.cfg.RedisAddr)
	default:
		return store.OpenSQLite(ctx, a.cfg.DBPath)
	}
}

// updateConfig returns the long-poll request parameters.
func updateConfig() tgbotapi.UpdateConfig {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollHoldSeconds
	return u
}

// runPolling long-polls Telegram for updates; commands are handled one at a
// time, which also keeps per-chat handling sequential. Scheduled fires run on
// the cron's own goroutines.
func (a *App) runPolling(ctx context.Context) error {
	go a.serveHTTP(ctx, a.routes())
	go func() { _ = a.sched.Run(ctx) }()

	updates := a.bot.GetUpdatesChan(updateConfig())

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()
			return nil
		case upd := <-updates:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// runWebhook serves Telegram updates and the external minute trigger.
func (a *App) runWebhook(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      a.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		a.log.Info("shutdown signal received")
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if a.cfg.RunMode == config.ModeWebhook {
		r.Post("/webhook", a.handleWebhook)
		r.Post("/tick", a.handleTick)
	}
	return r
}

// handleWebhook decodes one Telegram update. Bad payloads are dropped with a
// 200 so Telegram does not redeliver them.
func (a *App) handleWebhook(w http.ResponseWriter, req *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(req.Body).Decode(&upd); err != nil {
		a.log.Warn("bad webhook payload", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}
	a.router.HandleUpdate(req.Context(), upd)
	w.WriteHeader(http.StatusOK)
}

// handleTick runs one scheduling sweep for the current minute. The trigger
// contract is one call per minute; a duplicate tick within the same minute
// fires every due user again, so the endpoint is guarded by a shared secret
// when TICK_TOKEN is set.
func (a *App) handleTick(w http.ResponseWriter, req *http.Request) {
	if a.cfg.TickToken != "" {
		got := req.Header.Get("X-Tick-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.cfg.TickToken)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	a.sweep.Tick(req.Context(), time.Now())
	w.WriteHeader(http.StatusOK)
}

// serveHTTP runs the health endpoint for the polling deployment.
func (a *App) serveHTTP(ctx context.Context, h http.Handler) {
	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("http server error", zap.Error(err))
	}
}
