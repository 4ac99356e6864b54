package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/eventbus/app/sportsfeed"
	"github.com/dmitrymomot/eventbus/core/config"
	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/health"
	"github.com/dmitrymomot/eventbus/core/logger"
	"github.com/dmitrymomot/eventbus/core/server"
	"github.com/dmitrymomot/eventbus/pkg/metrics"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before os.Exit.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg sportsfeed.Config
	config.MustLoad(&cfg) // panic on error

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	// Logs go to stderr so they never interleave with the feed on stdout.
	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.AppName),
		logger.WithLevel(level),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			id := event.EventID(ctx)
			return logger.EventID(id), id != ""
		}),
	)
	logger.SetAsDefault(log)
	if err != nil {
		log.Warn("Invalid log level, falling back to info", logger.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := event.NewBus(
		event.WithLogger(log.With(logger.Component("eventbus"))),
		event.WithObserver(metrics.NewObserver(reg, metrics.WithConstLabels(map[string]string{"app": cfg.AppName}))),
	)
	defer bus.Close()

	app, err := sportsfeed.NewApp(
		sportsfeed.WithConfig(cfg),
		sportsfeed.WithLogger(log),
		sportsfeed.WithBus(bus),
		sportsfeed.WithOutput(os.Stdout),
	)
	if err != nil {
		log.Error("Failed to create sports feed", logger.Component("sportsfeed"), logger.Error(err))
		return 1
	}

	eg, egCtx := errgroup.WithContext(ctx)

	// The operational server lives only as long as the feed.
	srvCtx, stopServer := context.WithCancel(egCtx)
	defer stopServer()

	if cfg.Metrics.Enabled() {
		s, err := server.NewFromConfig(cfg.Metrics, server.WithLogger(log))
		if err != nil {
			log.Error("Failed to create metrics server", logger.Component("server"), logger.Error(err))
			return 1
		}

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		mux.Handle("GET /health/live", health.Liveness())
		mux.Handle("GET /health/ready", health.Readiness(log, bus.Ping))

		eg.Go(s.Run(srvCtx, mux))
	}

	eg.Go(func() error {
		defer stopServer()
		return app.Run(egCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Error("Sports feed failed", logger.Error(err))
		return 1
	}

	stats := bus.Stats()
	log.Info("Shutdown complete",
		logger.Count("published", int(stats.Published)),
		logger.Count("handled", int(stats.Handled)))
	return 0
}
