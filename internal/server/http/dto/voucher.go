package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherRequest describes voucher creation payload.
type VoucherRequest struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
}

// VoucherResponse describes a stored voucher.
type VoucherResponse struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	UsedCount     int             `json:"used_count"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ValidateVoucherRequest asks whether a code applies to an order amount.
type ValidateVoucherRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// ValidateVoucherResponse quotes the discount a valid code grants.
type ValidateVoucherResponse struct {
	Code     string          `json:"code"`
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}
