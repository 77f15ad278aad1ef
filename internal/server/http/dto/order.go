package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest is one requested variant. UnitPrice is the price the client displayed.
type OrderLineRequest struct {
	VariantID int64            `json:"variant_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// PlaceOrderRequest describes checkout payload.
type PlaceOrderRequest struct {
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	VoucherCode     string             `json:"voucher_code,omitempty"`
	Lines           []OrderLineRequest `json:"lines"`
}

// OrderLineResponse describes an order line with its captured price.
type OrderLineResponse struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// OrderResponse describes an order aggregate.
type OrderResponse struct {
	ID              int64               `json:"id"`
	Code            string              `json:"code"`
	CustomerID      int64               `json:"customer_id"`
	Status          string              `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	VoucherID       *int64              `json:"voucher_id,omitempty"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	OrderedAt       time.Time           `json:"ordered_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Lines           []OrderLineResponse `json:"lines"`
}

// StatusUpdateRequest moves an order to a new status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
