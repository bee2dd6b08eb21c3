package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/pos-ledger/internal/user/domain"
)

var tracer = otel.Tracer("user-repository")

// UserRepositoryWithTracing wraps a UserRepository with tracing
type UserRepositoryWithTracing struct {
	next domain.UserRepository
}

// NewUserRepositoryWithTracing creates a new repository with tracing
func NewUserRepositoryWithTracing(next domain.UserRepository) *UserRepositoryWithTracing {
	return &UserRepositoryWithTracing{next: next}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create with tracing
func (r *UserRepositoryWithTracing) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("user.username", user.Username),
			attribute.String("user.role", user.Role),
		),
	)
	err := r.next.Create(ctx, user)
	if err == nil {
		span.SetAttributes(attribute.String("user.id", user.ID))
	}
	endSpan(span, err)
	return err
}

// FindByID with tracing
func (r *UserRepositoryWithTracing) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	user, err := r.next.FindByID(ctx, id)
	endSpan(span, err)
	return user, err
}

// FindByUsername with tracing
func (r *UserRepositoryWithTracing) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByUsername",
		trace.WithAttributes(attribute.String("user.username", username)),
	)
	user, err := r.next.FindByUsername(ctx, username)
	if err == nil {
		span.SetAttributes(attribute.String("user.id", user.ID))
	}
	endSpan(span, err)
	return user, err
}

// FindAll with tracing
func (r *UserRepositoryWithTracing) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll")
	users, err := r.next.FindAll(ctx)
	span.SetAttributes(attribute.Int("users.count", len(users)))
	endSpan(span, err)
	return users, err
}

// Count with tracing
func (r *UserRepositoryWithTracing) Count(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "repository.Count")
	n, err := r.next.Count(ctx)
	span.SetAttributes(attribute.Int("users.count", n))
	endSpan(span, err)
	return n, err
}

// Mutate with tracing
func (r *UserRepositoryWithTracing) Mutate(ctx context.Context, fn func(users *[]domain.User) error) error {
	ctx, span := tracer.Start(ctx, "repository.Mutate")
	err := r.next.Mutate(ctx, fn)
	endSpan(span, err)
	return err
}
