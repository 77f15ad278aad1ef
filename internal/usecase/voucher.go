package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

var maxPercent = decimal.NewFromInt(100)

// VoucherUseCase validates and administers discount codes.
type VoucherUseCase struct {
	vouchers repository.VoucherRepository
	now      func() time.Time
}

// NewVoucherUseCase constructs VoucherUseCase.
func NewVoucherUseCase(vouchers repository.VoucherRepository) *VoucherUseCase {
	return &VoucherUseCase{vouchers: vouchers, now: time.Now}
}

// Validate returns the voucher if it may be redeemed against amount.
// Checks run in order: existence, expiry, activation, usage cap, minimum amount.
func (u *VoucherUseCase) Validate(ctx context.Context, code string, amount decimal.Decimal) (*model.Voucher, error) {
	code = NormalizeVoucherCode(code)
	if code == "" {
		return nil, domainErrors.NewVoucherError(code, domainErrors.VoucherNotFound)
	}

	voucher, err := u.vouchers.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.NewVoucherError(code, domainErrors.VoucherNotFound)
		}
		return nil, err
	}

	if err := voucher.Check(amount, u.now()); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Quote validates the voucher and returns the discount it grants on amount.
func (u *VoucherUseCase) Quote(ctx context.Context, code string, amount decimal.Decimal) (*model.Voucher, decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, decimal.Zero, domainErrors.NewValidationError("amount", "must not be negative")
	}
	voucher, err := u.Validate(ctx, code, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return voucher, voucher.Discount(amount), nil
}

// Create registers a new voucher.
func (u *VoucherUseCase) Create(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error) {
	voucher.Code = NormalizeVoucherCode(voucher.Code)
	if err := validateVoucher(voucher); err != nil {
		return nil, err
	}
	voucher.UsedCount = 0
	return u.vouchers.Create(ctx, voucher)
}

// Voucher returns an active (not deleted) voucher by code.
func (u *VoucherUseCase) Voucher(ctx context.Context, code string) (*model.Voucher, error) {
	voucher, err := u.vouchers.GetByCode(ctx, NormalizeVoucherCode(code))
	if err != nil {
		return nil, err
	}
	if voucher.DeletedAt != nil {
		return nil, domainErrors.ErrNotFound
	}
	return voucher, nil
}

// Vouchers lists vouchers that have not been deleted.
func (u *VoucherUseCase) Vouchers(ctx context.Context) ([]model.Voucher, error) {
	return u.vouchers.List(ctx)
}

// Delete soft-deletes the voucher; orders keep referencing it.
func (u *VoucherUseCase) Delete(ctx context.Context, code string) error {
	return u.vouchers.SoftDelete(ctx, NormalizeVoucherCode(code))
}

// NormalizeVoucherCode makes codes case-insensitive.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateVoucher(v *model.Voucher) error {
	if v.Code == "" {
		return domainErrors.NewValidationError("code", "must not be empty")
	}
	if !v.DiscountType.Valid() {
		return domainErrors.NewValidationError("discount_type", "must be percent or fixed")
	}
	if !v.DiscountValue.IsPositive() {
		return domainErrors.NewValidationError("discount_value", "must be positive")
	}
	if v.DiscountType == model.DiscountPercent && v.DiscountValue.GreaterThan(maxPercent) {
		return domainErrors.NewValidationError("discount_value", "percent must not exceed 100")
	}
	if v.MaxDiscount.IsNegative() {
		return domainErrors.NewValidationError("max_discount", "must not be negative")
	}
	if v.MinOrderValue.IsNegative() {
		return domainErrors.NewValidationError("min_order_value", "must not be negative")
	}
	if v.MaxUses != nil && *v.MaxUses <= 0 {
		return domainErrors.NewValidationError("max_uses", "must be positive")
	}
	if v.StartDate != nil && v.ExpiryDate != nil && v.ExpiryDate.Before(*v.StartDate) {
		return domainErrors.NewValidationError("expiry_date", "must not precede start_date")
	}
	return nil
}
