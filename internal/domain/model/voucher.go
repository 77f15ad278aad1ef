package model

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// DiscountType selects how a voucher value is applied.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Valid reports whether the discount type is supported.
func (d DiscountType) Valid() bool {
	return d == DiscountPercent || d == DiscountFixed
}

var hundred = decimal.NewFromInt(100)

// Voucher is a redeemable discount code.
type Voucher struct {
	ID            int64
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	// MaxDiscount caps percent discounts. Zero means no cap.
	MaxDiscount   decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxUses       *int
	UsedCount     int
	StartDate     *time.Time
	ExpiryDate    *time.Time
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// Check applies validation in a fixed order: expiry, activation, usage cap, minimum amount.
// Existence is the caller's concern.
func (v Voucher) Check(amount decimal.Decimal, now time.Time) error {
	if v.DeletedAt != nil {
		return domainErrors.NewVoucherError(v.Code, domainErrors.VoucherNotFound)
	}
	if v.ExpiryDate != nil && now.After(*v.ExpiryDate) {
		return domainErrors.NewVoucherError(v.Code, domainErrors.VoucherExpired)
	}
	if v.StartDate != nil && now.Before(*v.StartDate) {
		return domainErrors.NewVoucherError(v.Code, domainErrors.VoucherNotYetActive)
	}
	if v.MaxUses != nil && v.UsedCount >= *v.MaxUses {
		return domainErrors.NewVoucherError(v.Code, domainErrors.VoucherUsageExceeded)
	}
	if amount.LessThan(v.MinOrderValue) {
		return domainErrors.NewVoucherError(v.Code, domainErrors.VoucherMinimumNotMet)
	}
	return nil
}

// Discount returns the amount taken off the given subtotal. It never exceeds the subtotal.
func (v Voucher) Discount(amount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch v.DiscountType {
	case DiscountPercent:
		discount = amount.Mul(v.DiscountValue).Div(hundred).Round(2)
		if v.MaxDiscount.IsPositive() && discount.GreaterThan(v.MaxDiscount) {
			discount = v.MaxDiscount
		}
	case DiscountFixed:
		discount = v.DiscountValue
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(amount) {
		return amount
	}
	return discount
}
