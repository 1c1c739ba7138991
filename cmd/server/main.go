package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/goldwatch/internal/alert"
	"github.com/web3-frozen/goldwatch/internal/calendar"
	"github.com/web3-frozen/goldwatch/internal/config"
	"github.com/web3-frozen/goldwatch/internal/dedup"
	"github.com/web3-frozen/goldwatch/internal/handler"
	"github.com/web3-frozen/goldwatch/internal/middleware"
	"github.com/web3-frozen/goldwatch/internal/monitor"
	"github.com/web3-frozen/goldwatch/internal/monitor/sources"
	"github.com/web3-frozen/goldwatch/internal/records"
	"github.com/web3-frozen/goldwatch/internal/settings"
	"github.com/web3-frozen/goldwatch/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Failover chain, most-authoritative source first
	chain := monitor.NewChain(logger, monitor.ChainOptions{
		MaxDeviationPct: cfg.MaxDeviationPct,
		MaxFails:        cfg.SourceMaxFails,
		MuteFor:         cfg.SourceMuteFor,
	})
	chain.Register(sources.NewEastMoney(cfg.FetchTimeout))
	chain.Register(sources.NewSina(cfg.FetchTimeout))
	chain.Register(sources.NewTencent(cfg.FetchTimeout))
	chain.Register(sources.NewNetEase(cfg.FetchTimeout))
	if cfg.EnableJin10 {
		chain.Register(sources.NewJin10(logger, 30*time.Second))
	}

	history := monitor.NewHistory(cfg.HistorySize)
	settingsStore := settings.NewStore()
	recordsStore := records.NewStore(cfg.RecordsKeepFor)

	// Alerting is optional: without a bot token readings are still
	// collected and served, just never pushed anywhere.
	var onReading monitor.ReadingFunc
	if cfg.TelegramToken != "" {
		bot := telegram.NewBot(cfg.TelegramToken, history.Snapshot, logger)
		go bot.Run(ctx)

		dd, err := dedup.New(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, alerts will not be deduplicated", "error", err)
			dd = nil
		} else {
			defer dd.Close()
			logger.Info("redis connected for alert dedup")
		}

		watcher := alert.NewWatcher(settingsStore, dd, calendar.New(), bot.SendMessage, bot.Subscribers, logger)
		onReading = watcher.Observe
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, alerts disabled")
	}

	poller := monitor.NewPoller(chain, history, logger,
		cfg.PollInterval, cfg.BackoffInterval, onReading)
	go poller.Run(ctx)

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(history, cfg.StaleAfter))

	r.Route("/api", func(r chi.Router) {
		r.Get("/price", handler.Price(history, cfg.StaleAfter))
		r.Get("/history", handler.History(history))
		r.Get("/sources", handler.Sources(chain))
		r.Get("/profit", handler.Profit(history, settingsStore, cfg.FeeRate))
		r.Post("/calculate", handler.Calculate(history, settingsStore, cfg.FeeRate))
		r.Get("/settings", handler.GetSettings(settingsStore))
		r.Post("/settings", handler.UpdateSettings(settingsStore))
		r.Post("/record", handler.AddRecord(recordsStore))
		r.Get("/records", handler.ListRecords(recordsStore))
		r.Post("/records/clear", handler.ClearRecords(recordsStore))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
