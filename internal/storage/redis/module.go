package redis

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides the idempotency store, backed by Redis when REDIS_URL is set.
var Module = fx.Provide(newIdempotencyStore)

type storeParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

func newIdempotencyStore(p storeParams) (repository.IdempotencyStore, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Info("redis not configured, idempotency keys disabled")
		return NoopStore{}, nil
	}

	store, err := New(p.Ctx, p.Config.RedisURL, p.Config.IdempotencyTTL, p.Logger)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
