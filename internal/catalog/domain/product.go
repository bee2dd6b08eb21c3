package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog item
type Product struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CategoryID string          `json:"categoryId"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Quantity   int             `json:"quantity"`
	SoldCount  int             `json:"soldCount"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// IsAvailable checks if product is in stock
func (p *Product) IsAvailable() bool {
	return p.Quantity > 0
}

// StockValue is the on-hand quantity valued at sale price
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// StockCost is the on-hand quantity valued at cost
func (p *Product) StockCost() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// StockDelta changes one product's quantity. Sale deltas also move
// SoldCount in the opposite direction.
type StockDelta struct {
	ProductID string
	Delta     int
	Sale      bool
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	// AdjustStock applies every delta or none of them.
	AdjustStock(ctx context.Context, deltas []StockDelta) error
	ReassignCategory(ctx context.Context, fromID, toID string) (int, error)
	ReplaceAll(ctx context.Context, products []Product) error
}
