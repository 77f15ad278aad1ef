package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// StatisticsRepository reads consistent snapshots for reporting.
type StatisticsRepository interface {
	// RevenueFacts returns delivered orders placed inside the range, ordered by date.
	RevenueFacts(ctx context.Context, period model.DateRange) ([]model.OrderRevenue, error)
}
