package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module exposes the configured notification publisher to fx graph.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

func newPublisher(p publisherParams) (usecase.NotificationPublisher, error) {
	switch {
	case p.Config.AMQPURL != "":
		publisher, err := NewAMQPPublisher(p.Config.AMQPURL, p.Config.NotifyQueue, p.Logger)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return publisher.Close()
			},
		})
		p.Logger.Info("notifications via amqp", slog.String("queue", p.Config.NotifyQueue))
		return publisher, nil
	case p.Config.NotifyWebhookURL != "":
		publisher, err := NewWebhookPublisher(p.Config.NotifyWebhookURL, p.Logger)
		if err != nil {
			return nil, err
		}
		p.Logger.Info("notifications via webhook")
		return publisher, nil
	default:
		return NewLogPublisher(p.Logger), nil
	}
}
