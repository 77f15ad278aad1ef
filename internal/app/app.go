package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		newHTTPServer,
		newNotificationProcessor,
		func(f *StorefrontFacade) AdminBootstrapper { return f },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *StorefrontFacade
	Config *config.Config
	Logger *slog.Logger
}

func newNotificationProcessor(p workerParams) *worker.NotificationProcessor {
	return worker.NewNotificationProcessor(p.Facade, worker.Options{
		PollInterval: p.Config.NotifyPollInterval,
		BatchSize:    p.Config.NotifyBatchSize,
		Workers:      p.Config.NotifyWorkers,
		MaxAttempts:  p.Config.NotifyMaxAttempts,
	}, p.Logger)
}

// AdminBootstrapper creates the configured administrator account.
type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, login, password string) (bool, error)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.NotificationProcessor
	Admins     AdminBootstrapper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	var workerCancel context.CancelFunc

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := bootstrapAdmin(ctx, p.Admins, p.Config, p.Logger); err != nil {
				return err
			}

			p.Logger.Info("starting storefront", slog.String("addr", p.Server.Addr))

			// The start context expires once fx finishes starting, the worker outlives it.
			workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			workerCancel = cancel
			p.Worker.Start(workerCtx)

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			if workerCancel != nil {
				workerCancel()
			}
			p.Worker.Stop()

			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}

func bootstrapAdmin(ctx context.Context, admins AdminBootstrapper, cfg *config.Config, logger *slog.Logger) error {
	if cfg.AdminLogin == "" {
		return nil
	}
	created, err := admins.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin %q: %w", cfg.AdminLogin, err)
	}
	if created {
		logger.Info("admin account created", slog.String("login", cfg.AdminLogin))
	}
	return nil
}
