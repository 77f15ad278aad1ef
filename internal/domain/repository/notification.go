package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// NotificationRepository manages the order notification outbox.
type NotificationRepository interface {
	// ClaimBatch marks up to limit deliverable rows as processing and returns them.
	ClaimBatch(ctx context.Context, limit int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id int64) error
	// MarkFailed records the error and returns the row to pending until
	// maxAttempts is reached, after which it is failed for good.
	MarkFailed(ctx context.Context, id int64, reason string, maxAttempts int) error
}
