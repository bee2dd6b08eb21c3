package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/tair/pos-ledger/pkg/config"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/storage"
)

// Storage backends selectable through STORAGE_BACKEND and STORAGE_FALLBACK
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// OpenStore builds the configured primary backend wrapped in tracing. When a
// fallback backend is configured the primary is composed with it, and a
// primary that cannot be opened at all is replaced by the fallback.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	primary, closePrimary, err := openBackend(ctx, cfg, cfg.StorageBackend)

	if cfg.StorageFallback == "" || cfg.StorageFallback == cfg.StorageBackend {
		if err != nil {
			return nil, nil, err
		}
		return primary, closePrimary, nil
	}

	secondary, closeSecondary, ferr := openBackend(ctx, cfg, cfg.StorageFallback)
	if ferr != nil {
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Warn(ctx).
			Err(ferr).
			Str("backend", cfg.StorageFallback).
			Msg("Fallback storage unavailable, running without it")
		return primary, closePrimary, nil
	}

	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("backend", cfg.StorageBackend).
			Str("fallback", cfg.StorageFallback).
			Msg("Primary storage unavailable, using fallback")
		return secondary, closeSecondary, nil
	}

	logger.Info(ctx).
		Str("backend", cfg.StorageBackend).
		Str("fallback", cfg.StorageFallback).
		Msg("Storage initialized")

	return storage.NewFallbackStore(primary, secondary), func() {
		closePrimary()
		closeSecondary()
	}, nil
}

func openBackend(ctx context.Context, cfg *config.Config, backend string) (storage.Store, func(), error) {
	noop := func() {}

	switch backend {
	case BackendMemory:
		return storage.NewTracingStore(storage.NewMemoryStore(), backend), noop, nil

	case BackendFile:
		fs, err := storage.NewFileStore(filepath.Join(cfg.StorageDir, "kv"))
		if err != nil {
			return nil, nil, err
		}
		return storage.NewTracingStore(fs, backend), noop, nil

	case BackendRedis:
		client := newRedisClient(cfg)
		rs := storage.NewRedisStore(client, cfg.Redis.KeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return storage.NewTracingStore(rs, backend), func() { _ = client.Close() }, nil

	case BackendPostgres, BackendSQLite:
		db, err := openSQL(cfg, backend)
		if err != nil {
			return nil, nil, err
		}
		gs := storage.NewGormStore(db)
		if err := gs.AutoMigrate(); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		closeDB := noop
		if sqlDB, err := db.DB(); err == nil {
			closeDB = func() { _ = sqlDB.Close() }
		}
		return storage.NewTracingStore(gs, backend), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// OpenRedis connects the client behind the login rate limit. It returns nil
// when the limit is disabled or Redis cannot be reached.
func OpenRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Auth.LoginRateLimit <= 0 {
		return nil
	}
	client := newRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Warn(ctx).
			Err(err).
			Str("addr", cfg.Redis.Addr).
			Msg("Redis unavailable, login rate limit disabled")
		return nil
	}
	return client
}
