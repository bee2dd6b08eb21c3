package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/pos-ledger/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// ProductRepositoryWithTracing wraps a ProductRepository with tracing
type ProductRepositoryWithTracing struct {
	next domain.ProductRepository
}

// NewProductRepositoryWithTracing creates a new repository with tracing
func NewProductRepositoryWithTracing(next domain.ProductRepository) *ProductRepositoryWithTracing {
	return &ProductRepositoryWithTracing{next: next}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *ProductRepositoryWithTracing) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("product.id", product.ID),
			attribute.String("product.code", product.Code),
			attribute.String("product.name", product.Name),
			attribute.Int("product.quantity", product.Quantity),
		),
	)
	err := r.next.Create(ctx, product)
	endSpan(span, err)
	return err
}

func (r *ProductRepositoryWithTracing) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	product, err := r.next.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(
			attribute.String("product.code", product.Code),
			attribute.Int("product.quantity", product.Quantity),
		)
	}
	endSpan(span, err)
	return product, err
}

func (r *ProductRepositoryWithTracing) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByCode",
		trace.WithAttributes(attribute.String("product.code", code)),
	)
	product, err := r.next.FindByCode(ctx, code)
	endSpan(span, err)
	return product, err
}

func (r *ProductRepositoryWithTracing) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll")
	products, err := r.next.FindAll(ctx)
	span.SetAttributes(attribute.Int("products.count", len(products)))
	endSpan(span, err)
	return products, err
}

func (r *ProductRepositoryWithTracing) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(
			attribute.String("product.id", product.ID),
			attribute.Int("product.quantity", product.Quantity),
		),
	)
	err := r.next.Update(ctx, product)
	endSpan(span, err)
	return err
}

func (r *ProductRepositoryWithTracing) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	err := r.next.Delete(ctx, id)
	endSpan(span, err)
	return err
}

func (r *ProductRepositoryWithTracing) AdjustStock(ctx context.Context, deltas []domain.StockDelta) error {
	ctx, span := tracer.Start(ctx, "repository.AdjustStock",
		trace.WithAttributes(attribute.Int("stock.lines", len(deltas))),
	)
	err := r.next.AdjustStock(ctx, deltas)
	endSpan(span, err)
	return err
}

func (r *ProductRepositoryWithTracing) ReassignCategory(ctx context.Context, fromID, toID string) (int, error) {
	ctx, span := tracer.Start(ctx, "repository.ReassignCategory",
		trace.WithAttributes(
			attribute.String("category.from", fromID),
			attribute.String("category.to", toID),
		),
	)
	moved, err := r.next.ReassignCategory(ctx, fromID, toID)
	span.SetAttributes(attribute.Int("products.moved", moved))
	endSpan(span, err)
	return moved, err
}

func (r *ProductRepositoryWithTracing) ReplaceAll(ctx context.Context, products []domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.ReplaceAll",
		trace.WithAttributes(attribute.Int("products.count", len(products))),
	)
	err := r.next.ReplaceAll(ctx, products)
	endSpan(span, err)
	return err
}
