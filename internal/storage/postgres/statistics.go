package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type statisticsRepository struct {
	storage *Storage
}

func (r *statisticsRepository) RevenueFacts(ctx context.Context, period model.DateRange) ([]model.OrderRevenue, error) {
	const query = `SELECT o.id, o.ordered_at, o.total_amount,
                       COALESCE(SUM((l.unit_price - v.original_price) * l.quantity), 0)
                   FROM orders o
                   LEFT JOIN order_lines l ON l.order_id = o.id
                   LEFT JOIN variants v ON v.id = l.variant_id
                   WHERE o.status = $1 AND o.ordered_at >= $2 AND o.ordered_at < $3
                   GROUP BY o.id
                   ORDER BY o.ordered_at, o.id`

	var facts []model.OrderRevenue
	err := r.storage.WithinSnapshot(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, model.OrderStatusDelivered, period.From, period.To)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var f model.OrderRevenue
			if err := rows.Scan(&f.OrderID, &f.OrderedAt, &f.Total, &f.Profit); err != nil {
				return err
			}
			facts = append(facts, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return facts, nil
}
