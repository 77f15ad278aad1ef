package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository describes persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	// GetByID returns the product with its variants.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}

// VariantRepository describes persistence operations for variants.
type VariantRepository interface {
	Create(ctx context.Context, variant *model.Variant) (*model.Variant, error)
	GetByID(ctx context.Context, id int64) (*model.Variant, error)
	// Update changes attributes and prices. Stock is left untouched.
	Update(ctx context.Context, variant *model.Variant) (*model.Variant, error)
	// AdjustStock adds delta to stock unless the result would become negative.
	AdjustStock(ctx context.Context, id int64, delta int) (*model.Variant, error)
}
