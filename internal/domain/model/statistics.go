package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// OrderRevenue is the per-order fact revenue statistics are reduced from.
type OrderRevenue struct {
	OrderID   int64
	OrderedAt time.Time
	Total     decimal.Decimal
	Profit    decimal.Decimal
}

// Granularity names a bucket width.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Valid reports whether g is a known bucket width.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// RevenueBucket aggregates the orders whose date falls in [Start, Start+width).
type RevenueBucket struct {
	Start   time.Time
	Orders  int
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

// RevenueStatistics summarises delivered orders in a date range.
type RevenueStatistics struct {
	Range             DateRange
	TotalOrders       int
	TotalRevenue      decimal.Decimal
	TotalProfit       decimal.Decimal
	AverageOrderValue decimal.Decimal
	AverageProfit     decimal.Decimal
	Daily             []RevenueBucket
	Weekly            []RevenueBucket
	Monthly           []RevenueBucket
}

// KeepOnly empties every bucket series except the one of width g.
func (s *RevenueStatistics) KeepOnly(g Granularity) {
	if g != GranularityDay {
		s.Daily = []RevenueBucket{}
	}
	if g != GranularityWeek {
		s.Weekly = []RevenueBucket{}
	}
	if g != GranularityMonth {
		s.Monthly = []RevenueBucket{}
	}
}
