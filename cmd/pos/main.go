package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tair/pos-ledger/internal/app"
	auditcommand "github.com/tair/pos-ledger/internal/audit/usecase/command"
	"github.com/tair/pos-ledger/kafka"
	"github.com/tair/pos-ledger/pkg/config"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageBackend).
		Msg("Starting POS service")

	tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	// The audit stream is optional; without brokers entries stay local only.
	var publisher auditcommand.TransactionPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, audit stream disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	redisClient := app.OpenRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	pos, err := app.New(cfg, app.Options{Store: store, Publisher: publisher, Redis: redisClient})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to assemble application")
	}
	if err := pos.Seed(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to seed initial data")
	}

	go pos.RunLateSweeper(ctx, cfg.LateCheckInterval)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           pos.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}
}
