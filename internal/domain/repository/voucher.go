package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// VoucherRepository describes persistence operations for vouchers.
type VoucherRepository interface {
	Create(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error)
	// GetByCode returns soft-deleted vouchers too, with DeletedAt set.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)
	SoftDelete(ctx context.Context, code string) error
}
