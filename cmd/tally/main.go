package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-tally-service/internal/adapter/aicc"
	httpadapter "github.com/couchcryptid/fire-tally-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-tally-service/internal/adapter/kafka"
	"github.com/couchcryptid/fire-tally-service/internal/config"
	"github.com/couchcryptid/fire-tally-service/internal/observability"
	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.InsecureTLS {
		logger.Warn("TLS verification disabled for upstream feeds")
	}
	client := aicc.NewClient(cfg, metrics, logger)
	loader := tally.NewBreakerLoader(
		tally.NewFeedLoader(client, nil, metrics, logger),
		cfg.BreakerFailures, cfg.BreakerCooldown, metrics, logger,
	)

	opts := []tally.Option{tally.WithFetchTimeout(cfg.FetchTimeout)}

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		opts = append(opts, tally.WithRefreshHook(publisher.Hook(cfg.FetchTimeout)))
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	cache := tally.NewCache(loader, cfg.CacheTTL, metrics, logger, opts...)
	svc := tally.NewService(cache)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the cache. Readiness stays false until a load succeeds; later
	// Gets retry.
	go func() {
		if err := cache.Refresh(ctx); err != nil {
			logger.Error("initial tally load failed", "error", err)
			return
		}
		seasons, err := svc.AvailableSeasons(ctx)
		if err != nil {
			logger.Error("tally data unavailable", "error", err)
			return
		}
		logger.Info("tally cache warm",
			"seasons", len(seasons),
			"zones", len(svc.KnownZones()),
			"ttl", cfg.CacheTTL,
		)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
