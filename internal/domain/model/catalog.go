package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product groups sellable variants.
type Product struct {
	ID          int64
	Name        string
	Brand       string
	Category    string
	Description string
	CreatedAt   time.Time
	Variants    []Variant
}

// ProductFilter narrows product listings. Empty fields match everything.
type ProductFilter struct {
	Brand    string
	Category string
	Limit    int
	Offset   int
}

// Variant is a concrete configuration of a product with its own price and stock.
type Variant struct {
	ID               int64
	ProductID        int64
	Color            string
	Storage          string
	RAM              string
	OriginalPrice    decimal.Decimal
	SalePrice        decimal.Decimal
	PromotionalPrice *decimal.Decimal
	PromotionStart   *time.Time
	PromotionEnd     *time.Time
	Stock            int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PromotionActive reports whether the promotional price applies at the given moment.
func (v Variant) PromotionActive(at time.Time) bool {
	if v.PromotionalPrice == nil {
		return false
	}
	if v.PromotionStart != nil && at.Before(*v.PromotionStart) {
		return false
	}
	if v.PromotionEnd != nil && at.After(*v.PromotionEnd) {
		return false
	}
	return true
}

// EffectivePrice returns the unit price a customer pays at the given moment.
func (v Variant) EffectivePrice(at time.Time) decimal.Decimal {
	if v.PromotionActive(at) {
		return *v.PromotionalPrice
	}
	return v.SalePrice
}

// Availability is the answer of a stock check for one variant.
type Availability struct {
	VariantID int64
	Requested int
	Available int
	InStock   bool
	UnitPrice decimal.Decimal
}
