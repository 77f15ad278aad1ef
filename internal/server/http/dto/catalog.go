package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest describes product creation payload.
type ProductRequest struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ProductResponse is a product with its variants.
type ProductResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Variants    []VariantResponse `json:"variants"`
}

// VariantRequest describes variant creation and update payload.
type VariantRequest struct {
	Color            string           `json:"color"`
	Storage          string           `json:"storage"`
	RAM              string           `json:"ram"`
	OriginalPrice    decimal.Decimal  `json:"original_price"`
	SalePrice        decimal.Decimal  `json:"sale_price"`
	PromotionalPrice *decimal.Decimal `json:"promotional_price,omitempty"`
	PromotionStart   *time.Time       `json:"promotion_start,omitempty"`
	PromotionEnd     *time.Time       `json:"promotion_end,omitempty"`
	Stock            int              `json:"stock"`
}

// VariantResponse describes a variant with the price currently charged.
type VariantResponse struct {
	ID               int64            `json:"id"`
	ProductID        int64            `json:"product_id"`
	Color            string           `json:"color,omitempty"`
	Storage          string           `json:"storage,omitempty"`
	RAM              string           `json:"ram,omitempty"`
	OriginalPrice    decimal.Decimal  `json:"original_price"`
	SalePrice        decimal.Decimal  `json:"sale_price"`
	PromotionalPrice *decimal.Decimal `json:"promotional_price,omitempty"`
	PromotionStart   *time.Time       `json:"promotion_start,omitempty"`
	PromotionEnd     *time.Time       `json:"promotion_end,omitempty"`
	EffectivePrice   decimal.Decimal  `json:"effective_price"`
	Stock            int              `json:"stock"`
}

// StockAdjustmentRequest restocks (positive) or writes off (negative) units.
type StockAdjustmentRequest struct {
	Delta int `json:"delta"`
}

// AvailabilityResponse answers a stock check.
type AvailabilityResponse struct {
	VariantID int64           `json:"variant_id"`
	Requested int             `json:"requested"`
	Available int             `json:"available"`
	InStock   bool            `json:"in_stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
