package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/tair/pos-ledger/internal/audit/repository"
	"github.com/tair/pos-ledger/kafka"
	"github.com/tair/pos-ledger/pkg/config"
	"github.com/tair/pos-ledger/pkg/database"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/tracing"
)

// audit-sink copies the POS audit stream into a SQL archive
func main() {
	cfg := config.Load()
	serviceName := cfg.ServiceName + "-audit-sink"

	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Logger.Fatal().Msg("KAFKA_BROKERS is required")
	}

	tp, err := tracing.InitTracer(serviceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer tracing.Shutdown(context.Background(), tp)

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("PostgreSQL unavailable, archiving to SQLite")
		db, err = database.NewSQLiteConnection(cfg.Database.SQLitePath)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
	}

	archive := repository.NewGormArchive(db)
	if err := archive.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{kafka.TopicTransactions})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeTransactionRecorded, func(ctx context.Context, event kafka.TransactionRecordedEvent) error {
		return archive.Store(ctx, event.Transaction())
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down audit sink...")
}
