package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

const (
	keyPrefix    = "storefront:idempotency:"
	pendingValue = "pending"
	pingTimeout  = 5 * time.Second
)

// Store keeps idempotency keys in Redis with a TTL.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to redisURL and verifies the connection.
func New(ctx context.Context, redisURL string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client, ttl: ttl, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Begin reserves key for the customer. A key already completed returns its order id
// with found set; a key still pending returns ErrRequestInProgress.
func (s *Store) Begin(ctx context.Context, customerID int64, key string) (int64, bool, error) {
	redisKey := storeKey(customerID, key)

	acquired, err := s.client.SetNX(ctx, redisKey, pendingValue, s.ttl).Result()
	if err != nil {
		return 0, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if acquired {
		return 0, false, nil
	}

	value, err := s.client.Get(ctx, redisKey).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, domainErrors.ErrRequestInProgress
	}
	if err != nil {
		return 0, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if value == pendingValue {
		return 0, false, domainErrors.ErrRequestInProgress
	}

	orderID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		s.logger.Warn("corrupt idempotency entry", slog.String("key", redisKey), slog.String("value", value))
		return 0, false, domainErrors.ErrRequestInProgress
	}
	return orderID, true, nil
}

// Complete records the placed order id under key for the configured TTL.
func (s *Store) Complete(ctx context.Context, customerID int64, key string, orderID int64) error {
	if err := s.client.Set(ctx, storeKey(customerID, key), strconv.FormatInt(orderID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Abort releases key so the request can be retried.
func (s *Store) Abort(ctx context.Context, customerID int64, key string) error {
	if err := s.client.Del(ctx, storeKey(customerID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func storeKey(customerID int64, key string) string {
	return keyPrefix + strconv.FormatInt(customerID, 10) + ":" + key
}

// NoopStore is used when Redis is not configured; every request is treated as new.
type NoopStore struct{}

// Begin always reports a new request.
func (NoopStore) Begin(context.Context, int64, string) (int64, bool, error) { return 0, false, nil }

// Complete does nothing.
func (NoopStore) Complete(context.Context, int64, string, int64) error { return nil }

// Abort does nothing.
func (NoopStore) Abort(context.Context, int64, string) error { return nil }
