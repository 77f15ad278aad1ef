package test

import (
	"context"
	"sync"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PublisherStub records published events and fails while Err is set.
type PublisherStub struct {
	mu        sync.Mutex
	Events    []model.OrderEvent
	Err       error
	PublishFn func(context.Context, model.OrderEvent) error
}

// Publish stores the event unless configured to fail.
func (p *PublisherStub) Publish(ctx context.Context, event model.OrderEvent) error {
	if p.PublishFn != nil {
		return p.PublishFn(ctx, event)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

// Published returns a copy of the recorded events.
func (p *PublisherStub) Published() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.Events...)
}

func (p *PublisherStub) Name() string { return "stub" }
