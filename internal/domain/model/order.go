package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:  {OrderStatusDelivered},
}

// Valid reports whether the status is part of the lifecycle.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// PaymentMethod is how the customer settles the order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// Valid reports whether the payment method is supported.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentCard, PaymentBankTransfer:
		return true
	}
	return false
}

// OrderLine is one variant in an order with its captured unit price.
type OrderLine struct {
	ID        int64
	OrderID   int64
	VariantID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns unit price times quantity.
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the purchase header together with its lines.
type Order struct {
	ID              int64
	Code            string
	CustomerID      int64
	Status          OrderStatus
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	VoucherID       *int64
	ShippingAddress string
	PaymentMethod   PaymentMethod
	OrderedAt       time.Time
	UpdatedAt       time.Time
	Lines           []OrderLine
}

// OrderDraft carries everything the placement transaction writes.
type OrderDraft struct {
	Code            string
	CustomerID      int64
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	VoucherID       *int64
	VoucherCode     string
	ShippingAddress string
	PaymentMethod   PaymentMethod
	Lines           []OrderLine
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID int64
	Status     OrderStatus
	Limit      int
	Offset     int
}

// Subtotal sums line totals.
func Subtotal(lines []OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Total())
	}
	return sum
}
