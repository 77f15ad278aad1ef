package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueBucketResponse aggregates orders of one day, ISO week or month.
type RevenueBucketResponse struct {
	Start   time.Time       `json:"start"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// RevenueStatisticsResponse summarises delivered orders in [From, To).
type RevenueStatisticsResponse struct {
	From              time.Time               `json:"from"`
	To                time.Time               `json:"to"`
	TotalOrders       int                     `json:"total_orders"`
	TotalRevenue      decimal.Decimal         `json:"total_revenue"`
	TotalProfit       decimal.Decimal         `json:"total_profit"`
	AverageOrderValue decimal.Decimal         `json:"average_order_value"`
	AverageProfit     decimal.Decimal         `json:"average_profit"`
	Daily             []RevenueBucketResponse `json:"daily"`
	Weekly            []RevenueBucketResponse `json:"weekly"`
	Monthly           []RevenueBucketResponse `json:"monthly"`
}
