package usecase

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// InventoryUseCase answers stock questions. It never mutates stock.
type InventoryUseCase struct {
	variants repository.VariantRepository
	now      func() time.Time
}

// NewInventoryUseCase constructs InventoryUseCase.
func NewInventoryUseCase(variants repository.VariantRepository) *InventoryUseCase {
	return &InventoryUseCase{variants: variants, now: time.Now}
}

// CheckAvailability reports whether the variant currently has quantity units in stock
// and the unit price that would be charged for them.
func (u *InventoryUseCase) CheckAvailability(ctx context.Context, variantID int64, quantity int) (*model.Availability, error) {
	if quantity <= 0 {
		return nil, domainErrors.NewValidationError("quantity", "must be positive")
	}

	variant, err := u.variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	return &model.Availability{
		VariantID: variant.ID,
		Requested: quantity,
		Available: variant.Stock,
		InStock:   variant.Stock >= quantity,
		UnitPrice: variant.EffectivePrice(u.now()),
	}, nil
}
