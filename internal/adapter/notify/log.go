package notify

import (
	"context"
	"log/slog"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// LogPublisher writes events to the service log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	p.logger.Info("order event",
		slog.String("event_id", event.EventID),
		slog.String("kind", string(event.Kind)),
		slog.Int64("order_id", event.Order.ID),
		slog.String("order_code", event.Order.Code),
		slog.String("status", string(event.Order.Status)),
		slog.String("total", event.Order.TotalAmount.StringFixed(2)),
	)
	return nil
}

// Name identifies the publisher in logs.
func (p *LogPublisher) Name() string { return "log" }
