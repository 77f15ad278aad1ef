package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// NotificationPublisher delivers order events outside the service.
type NotificationPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
	Name() string
}

// NotificationUseCase drains the outbox written by order transactions.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	orders        repository.OrderRepository
	publisher     NotificationPublisher
	logger        *slog.Logger
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(
	notifications repository.NotificationRepository,
	orders repository.OrderRepository,
	publisher NotificationPublisher,
	logger *slog.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, orders: orders, publisher: publisher, logger: logger}
}

// Claim reserves a batch of pending notifications for delivery.
func (u *NotificationUseCase) Claim(ctx context.Context, limit int) ([]model.Notification, error) {
	return u.notifications.ClaimBatch(ctx, limit)
}

// Deliver publishes one notification. On failure the row is returned to the
// outbox until maxAttempts is reached, and the publish error is returned.
func (u *NotificationUseCase) Deliver(ctx context.Context, n model.Notification, maxAttempts int) error {
	order, err := u.orders.GetByID(ctx, n.OrderID)
	if err != nil {
		return u.fail(ctx, n, maxAttempts, fmt.Errorf("load order %d: %w", n.OrderID, err))
	}

	event := model.OrderEvent{
		EventID:    n.EventID,
		Kind:       n.Kind,
		OccurredAt: n.CreatedAt,
		Order:      *order,
	}
	if err := u.publisher.Publish(ctx, event); err != nil {
		return u.fail(ctx, n, maxAttempts, fmt.Errorf("publish via %s: %w", u.publisher.Name(), err))
	}

	if err := u.notifications.MarkSent(ctx, n.ID); err != nil {
		return fmt.Errorf("mark notification %d sent: %w", n.ID, err)
	}
	return nil
}

func (u *NotificationUseCase) fail(ctx context.Context, n model.Notification, maxAttempts int, cause error) error {
	if err := u.notifications.MarkFailed(ctx, n.ID, cause.Error(), maxAttempts); err != nil {
		u.logger.Error("failed to record notification failure",
			slog.Int64("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
	if n.Attempts+1 >= maxAttempts {
		u.logger.Warn("notification abandoned",
			slog.Int64("notification_id", n.ID),
			slog.Int64("order_id", n.OrderID),
			slog.String("error", cause.Error()),
		)
	}
	return cause
}
