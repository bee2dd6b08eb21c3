package storage

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pos-storage")

// TracingStore wraps a Store with a span per operation
type TracingStore struct {
	next    Store
	backend string
}

// NewTracingStore decorates next; backend names it in span attributes
func NewTracingStore(next Store, backend string) *TracingStore {
	return &TracingStore{next: next, backend: backend}
}

func (s *TracingStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "storage."+op,
		trace.WithAttributes(
			attribute.String("storage.backend", s.backend),
			attribute.String("storage.key", key),
		),
	)
}

func finish(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *TracingStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.start(ctx, "Get", key)
	data, err := s.next.Get(ctx, key)
	span.SetAttributes(
		attribute.Int("storage.bytes", len(data)),
		attribute.Bool("storage.hit", err == nil),
	)
	finish(span, err)
	return data, err
}

func (s *TracingStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := s.start(ctx, "Set", key)
	span.SetAttributes(attribute.Int("storage.bytes", len(value)))
	err := s.next.Set(ctx, key, value)
	finish(span, err)
	return err
}

func (s *TracingStore) Remove(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "Remove", key)
	err := s.next.Remove(ctx, key)
	finish(span, err)
	return err
}

func (s *TracingStore) Keys(ctx context.Context) ([]string, error) {
	ctx, span := s.start(ctx, "Keys", "")
	keys, err := s.next.Keys(ctx)
	span.SetAttributes(attribute.Int("storage.keys", len(keys)))
	finish(span, err)
	return keys, err
}
