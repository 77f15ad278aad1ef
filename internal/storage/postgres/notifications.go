package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type notificationRepository struct {
	storage *Storage
}

func (r *notificationRepository) ClaimBatch(ctx context.Context, limit int) ([]model.Notification, error) {
	const selectQuery = `SELECT id, event_id, order_id, kind, status, attempts, last_error, created_at, updated_at
                         FROM notifications
                         WHERE status = 'pending'
                            OR (status = 'processing' AND updated_at < NOW() - INTERVAL '5 minutes')
                         ORDER BY id
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = ANY($2)`

	var batch []model.Notification
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			var n model.Notification
			if err := rows.Scan(&n.ID, &n.EventID, &n.OrderID, &n.Kind, &n.Status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return err
			}
			n.Status = model.NotificationProcessing
			batch = append(batch, n)
			ids = append(ids, n.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(ids) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, claimQuery, model.NotificationProcessing, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id int64) error {
	const query = `UPDATE notifications SET status = $1, last_error = '', updated_at = NOW() WHERE id = $2`
	_, err := r.storage.pool.Exec(ctx, query, model.NotificationSent, id)
	return err
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id int64, reason string, maxAttempts int) error {
	const query = `UPDATE notifications
                   SET attempts = attempts + 1,
                       last_error = $1,
                       status = CASE WHEN attempts + 1 >= $2 THEN 'failed' ELSE 'pending' END,
                       updated_at = NOW()
                   WHERE id = $3`
	_, err := r.storage.pool.Exec(ctx, query, reason, maxAttempts, id)
	return err
}
