package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/pos-ledger/pkg/logger"
)

var fallbackCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pos_storage_fallback_total",
		Help: "Storage operations served by the fallback backend after a primary failure",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(fallbackCounter)
}

// FallbackStore serves every call from primary and retries it on secondary
// when primary fails. The primary error is logged and counted, never returned.
type FallbackStore struct {
	primary   Store
	secondary Store
}

// NewFallbackStore composes two backends
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) fellBack(ctx context.Context, op, key string, err error) {
	fallbackCounter.WithLabelValues(op).Inc()
	logger.Warn(ctx).
		Err(err).
		Str("op", op).
		Str("key", key).
		Msg("Primary storage failed, using fallback")
}

// Get reads from primary, then from secondary when primary fails. A key the
// secondary does not hold is reported with the primary error, never as
// ErrKeyNotFound, so callers do not rebuild a document from nothing.
func (s *FallbackStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.primary.Get(ctx, key)
	if err == nil || errors.Is(err, ErrKeyNotFound) {
		return data, err
	}
	s.fellBack(ctx, "get", key, err)

	data, serr := s.secondary.Get(ctx, key)
	if serr == nil {
		return data, nil
	}
	if errors.Is(serr, ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return nil, fmt.Errorf("failed to read %s: %w", key, errors.Join(err, serr))
}

func (s *FallbackStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.primary.Set(ctx, key, value)
	if err == nil {
		return nil
	}
	s.fellBack(ctx, "set", key, err)
	return s.secondary.Set(ctx, key, value)
}

func (s *FallbackStore) Remove(ctx context.Context, key string) error {
	err := s.primary.Remove(ctx, key)
	if err == nil {
		return nil
	}
	s.fellBack(ctx, "remove", key, err)
	return s.secondary.Remove(ctx, key)
}

func (s *FallbackStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.primary.Keys(ctx)
	if err == nil {
		return keys, nil
	}
	s.fellBack(ctx, "keys", "", err)
	return s.secondary.Keys(ctx)
}
