package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OutboxFacadeStub mimics worker interactions with the outbox.
type OutboxFacadeStub struct {
	Batches   [][]model.Notification
	PendingFn func(context.Context, int) ([]model.Notification, error)
	DeliverFn func(context.Context, model.Notification, int) error
	Delivered []model.Notification
	mu        sync.Mutex
	calls     int32
}

// Lock exposes internal mutex for external synchronization.
func (s *OutboxFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *OutboxFacadeStub) Unlock() { s.mu.Unlock() }

// PendingNotifications returns batches from configured queue.
func (s *OutboxFacadeStub) PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// DeliverNotification records delivered notifications.
func (s *OutboxFacadeStub) DeliverNotification(ctx context.Context, n model.Notification, maxAttempts int) error {
	if s.DeliverFn != nil {
		if err := s.DeliverFn(ctx, n, maxAttempts); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, n)
	return nil
}

// DeliveredCount returns how many notifications were delivered so far.
func (s *OutboxFacadeStub) DeliveredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Delivered)
}

// AdminBootstrapperStub records admin bootstrap calls.
type AdminBootstrapperStub struct {
	Created bool
	Err     error
	Logins  []string
}

// EnsureAdmin records the login and returns the configured result.
func (s *AdminBootstrapperStub) EnsureAdmin(_ context.Context, login, _ string) (bool, error) {
	s.Logins = append(s.Logins, login)
	if s.Err != nil {
		return false, s.Err
	}
	return s.Created, nil
}
