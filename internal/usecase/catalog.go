package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// CatalogUseCase manages products and their variants.
type CatalogUseCase struct {
	products repository.ProductRepository
	variants repository.VariantRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, variants repository.VariantRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, variants: variants}
}

// CreateProduct stores a new product without variants.
func (u *CatalogUseCase) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, domainErrors.NewValidationError("name", "must not be empty")
	}
	product.Brand = strings.TrimSpace(product.Brand)
	product.Category = strings.TrimSpace(product.Category)
	return u.products.Create(ctx, product)
}

// Product returns the product with its variants.
func (u *CatalogUseCase) Product(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// Products lists products matching the filter.
func (u *CatalogUseCase) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return u.products.List(ctx, filter)
}

// CreateVariant adds a variant to an existing product.
func (u *CatalogUseCase) CreateVariant(ctx context.Context, productID int64, variant *model.Variant) (*model.Variant, error) {
	if _, err := u.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	variant.ProductID = productID
	if err := validateVariant(variant); err != nil {
		return nil, err
	}
	if variant.Stock < 0 {
		return nil, domainErrors.NewValidationError("stock", "must not be negative")
	}
	return u.variants.Create(ctx, variant)
}

// Variant returns a single variant.
func (u *CatalogUseCase) Variant(ctx context.Context, id int64) (*model.Variant, error) {
	return u.variants.GetByID(ctx, id)
}

// UpdateVariant replaces attributes and prices; stock only changes through AdjustStock.
func (u *CatalogUseCase) UpdateVariant(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	if err := validateVariant(variant); err != nil {
		return nil, err
	}
	return u.variants.Update(ctx, variant)
}

// AdjustStock restocks (positive delta) or writes off (negative delta) a variant.
func (u *CatalogUseCase) AdjustStock(ctx context.Context, id int64, delta int) (*model.Variant, error) {
	if delta == 0 {
		return nil, domainErrors.NewValidationError("delta", "must not be zero")
	}
	return u.variants.AdjustStock(ctx, id, delta)
}

func validateVariant(v *model.Variant) error {
	if v.OriginalPrice.IsNegative() {
		return domainErrors.NewValidationError("original_price", "must not be negative")
	}
	if !v.SalePrice.IsPositive() {
		return domainErrors.NewValidationError("sale_price", "must be positive")
	}
	if v.PromotionalPrice != nil && !v.PromotionalPrice.IsPositive() {
		return domainErrors.NewValidationError("promotional_price", "must be positive")
	}
	if v.PromotionStart != nil && v.PromotionEnd != nil && v.PromotionEnd.Before(*v.PromotionStart) {
		return domainErrors.NewValidationError("promotion_end", "must not precede promotion_start")
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
