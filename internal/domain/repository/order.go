package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create writes the order, decrements stock, redeems the voucher and enqueues
	// the placement notification in one transaction.
	Create(ctx context.Context, draft *model.OrderDraft) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// UpdateStatus moves the order to status if the lifecycle allows it.
	// Entering cancelled restores stock in the same transaction.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
}
