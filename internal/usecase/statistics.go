package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// StatisticsUseCase builds revenue reports from delivered orders.
type StatisticsUseCase struct {
	statistics repository.StatisticsRepository
}

// NewStatisticsUseCase constructs StatisticsUseCase.
func NewStatisticsUseCase(statistics repository.StatisticsRepository) *StatisticsUseCase {
	return &StatisticsUseCase{statistics: statistics}
}

// Revenue aggregates delivered orders placed within [period.From, period.To).
func (u *StatisticsUseCase) Revenue(ctx context.Context, period model.DateRange) (*model.RevenueStatistics, error) {
	if period.From.IsZero() || period.To.IsZero() {
		return nil, domainErrors.NewValidationError("range", "from and to are required")
	}
	if period.From.After(period.To) {
		return nil, domainErrors.NewValidationError("range", "from must not be after to")
	}

	facts, err := u.statistics.RevenueFacts(ctx, period)
	if err != nil {
		return nil, err
	}
	return Aggregate(period, facts), nil
}

// Aggregate reduces per-order facts into totals, averages and calendar buckets.
// Bucket boundaries are computed in the location of period.From.
func Aggregate(period model.DateRange, facts []model.OrderRevenue) *model.RevenueStatistics {
	stats := &model.RevenueStatistics{
		Range:             period,
		TotalRevenue:      decimal.Zero,
		TotalProfit:       decimal.Zero,
		AverageOrderValue: decimal.Zero,
		AverageProfit:     decimal.Zero,
		Daily:             []model.RevenueBucket{},
		Weekly:            []model.RevenueBucket{},
		Monthly:           []model.RevenueBucket{},
	}

	loc := period.From.Location()
	daily := map[time.Time]*model.RevenueBucket{}
	weekly := map[time.Time]*model.RevenueBucket{}
	monthly := map[time.Time]*model.RevenueBucket{}

	for _, fact := range facts {
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(fact.Total)
		stats.TotalProfit = stats.TotalProfit.Add(fact.Profit)

		at := fact.OrderedAt.In(loc)
		addToBucket(daily, startOfDay(at), fact)
		addToBucket(weekly, startOfWeek(at), fact)
		addToBucket(monthly, startOfMonth(at), fact)
	}

	if stats.TotalOrders > 0 {
		n := decimal.NewFromInt(int64(stats.TotalOrders))
		stats.AverageOrderValue = stats.TotalRevenue.Div(n).Round(2)
		stats.AverageProfit = stats.TotalProfit.Div(n).Round(2)
	}

	stats.Daily = sortedBuckets(daily)
	stats.Weekly = sortedBuckets(weekly)
	stats.Monthly = sortedBuckets(monthly)
	return stats
}

func addToBucket(buckets map[time.Time]*model.RevenueBucket, start time.Time, fact model.OrderRevenue) {
	b, ok := buckets[start]
	if !ok {
		b = &model.RevenueBucket{Start: start, Revenue: decimal.Zero, Profit: decimal.Zero}
		buckets[start] = b
	}
	b.Orders++
	b.Revenue = b.Revenue.Add(fact.Total)
	b.Profit = b.Profit.Add(fact.Profit)
}

func sortedBuckets(buckets map[time.Time]*model.RevenueBucket) []model.RevenueBucket {
	out := make([]model.RevenueBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday that opens t's ISO week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
