package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OutboxFacade exposes the subset of application functionality required by the worker.
type OutboxFacade interface {
	PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	DeliverNotification(ctx context.Context, n model.Notification, maxAttempts int) error
}

// retryAfter is implemented by publisher errors that carry a back-off hint.
type retryAfter interface {
	RetryAfter() time.Duration
}

// Options tunes NotificationProcessor.
type Options struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	MaxAttempts  int
}

// NotificationProcessor drains the notification outbox with a pool of workers.
type NotificationProcessor struct {
	facade OutboxFacade
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex

	pauseMu     sync.Mutex
	pausedUntil time.Time
}

// NewNotificationProcessor constructs the notification worker pool.
func NewNotificationProcessor(facade OutboxFacade, opts Options, logger *slog.Logger) *NotificationProcessor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &NotificationProcessor{
		facade: facade,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches background processing. A stopped processor may be started again.
func (p *NotificationProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	jobs := make(chan model.Notification, p.opts.BatchSize*p.opts.Workers)

	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx, jobs)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish. Claimed but undelivered rows are
// reclaimed by a later poll once their claim goes stale.
func (p *NotificationProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *NotificationProcessor) dispatch(ctx context.Context, jobs chan<- model.Notification) {
	defer p.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.paused() {
				continue
			}
			p.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (p *NotificationProcessor) fetchAndDispatch(ctx context.Context, jobs chan<- model.Notification) {
	batch, err := p.facade.PendingNotifications(ctx, p.opts.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("claim notifications failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, n := range batch {
		select {
		case <-ctx.Done():
			return
		case jobs <- n:
		}
	}
}

func (p *NotificationProcessor) worker(ctx context.Context, jobs <-chan model.Notification) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-jobs:
			if !ok {
				return
			}
			p.handle(ctx, n)
		}
	}
}

func (p *NotificationProcessor) handle(ctx context.Context, n model.Notification) {
	if wait := p.remainingPause(); wait > 0 && !sleep(ctx, wait) {
		return
	}

	err := p.facade.DeliverNotification(ctx, n, p.opts.MaxAttempts)
	if err == nil {
		p.logger.Debug("notification delivered",
			slog.Int64("notification_id", n.ID),
			slog.String("kind", string(n.Kind)),
		)
		return
	}

	var hint retryAfter
	if errors.As(err, &hint) {
		p.logger.Warn("notification receiver rate limited", slog.Duration("retry_after", hint.RetryAfter()))
		p.pause(hint.RetryAfter())
		return
	}
	if ctx.Err() == nil {
		p.logger.Error("notification delivery failed",
			slog.Int64("notification_id", n.ID),
			slog.Int64("order_id", n.OrderID),
			slog.Int("attempt", n.Attempts+1),
			slog.String("error", err.Error()),
		)
	}
}

func (p *NotificationProcessor) pause(d time.Duration) {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	if until := p.now().Add(d); until.After(p.pausedUntil) {
		p.pausedUntil = until
	}
}

func (p *NotificationProcessor) remainingPause() time.Duration {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	return p.pausedUntil.Sub(p.now())
}

func (p *NotificationProcessor) paused() bool {
	return p.remainingPause() > 0
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
