package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/pos-ledger/internal/installment/domain"
)

var tracer = otel.Tracer("installment-repository")

// ContractRepositoryWithTracing wraps a ContractRepository with tracing
type ContractRepositoryWithTracing struct {
	next domain.ContractRepository
}

// NewContractRepositoryWithTracing creates a new repository with tracing
func NewContractRepositoryWithTracing(next domain.ContractRepository) *ContractRepositoryWithTracing {
	return &ContractRepositoryWithTracing{next: next}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *ContractRepositoryWithTracing) Create(ctx context.Context, contract *domain.Contract) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("contract.id", contract.ID),
			attribute.String("contract.number", contract.ContractNumber),
			attribute.String("contract.sale_id", contract.SaleID),
			attribute.String("contract.total", contract.TotalAmount.String()),
		),
	)
	err := r.next.Create(ctx, contract)
	endSpan(span, err)
	return err
}

func (r *ContractRepositoryWithTracing) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("contract.id", id)),
	)
	contract, err := r.next.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.String("contract.status", string(contract.Status)))
	}
	endSpan(span, err)
	return contract, err
}

func (r *ContractRepositoryWithTracing) FindAll(ctx context.Context) ([]domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll")
	contracts, err := r.next.FindAll(ctx)
	span.SetAttributes(attribute.Int("contracts.count", len(contracts)))
	endSpan(span, err)
	return contracts, err
}

func (r *ContractRepositoryWithTracing) Mutate(ctx context.Context, fn func(contracts []domain.Contract) error) error {
	ctx, span := tracer.Start(ctx, "repository.Mutate")
	err := r.next.Mutate(ctx, fn)
	endSpan(span, err)
	return err
}

func (r *ContractRepositoryWithTracing) ReplaceAll(ctx context.Context, contracts []domain.Contract) error {
	ctx, span := tracer.Start(ctx, "repository.ReplaceAll",
		trace.WithAttributes(attribute.Int("contracts.count", len(contracts))),
	)
	err := r.next.ReplaceAll(ctx, contracts)
	endSpan(span, err)
	return err
}
