package repository

import "context"

// IdempotencyStore remembers which order a customer's idempotency key produced.
type IdempotencyStore interface {
	// Begin reserves key. It returns the order id and true when the key already
	// completed, or ErrRequestInProgress while another request holds it.
	Begin(ctx context.Context, customerID int64, key string) (int64, bool, error)
	Complete(ctx context.Context, customerID int64, key string, orderID int64) error
	// Abort releases a reservation so the client may retry with the same key.
	Abort(ctx context.Context, customerID int64, key string) error
}
