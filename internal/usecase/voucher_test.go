package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func TestVoucherUseCaseValidateOrder(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewVoucherUseCase(store.Vouchers())
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }
	ctx := context.Background()

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	one := 1

	seed := []model.Voucher{
		{Code: "EXPIRED10", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), ExpiryDate: &past, StartDate: &future, MaxUses: &one, UsedCount: 1, MinOrderValue: decimal.NewFromInt(999)},
		{Code: "LATER", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), StartDate: &future, MaxUses: &one, UsedCount: 1},
		{Code: "USED", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), MaxUses: &one, UsedCount: 1, MinOrderValue: decimal.NewFromInt(999)},
		{Code: "MIN", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), MinOrderValue: decimal.NewFromInt(999)},
		{Code: "OK", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), StartDate: &past, ExpiryDate: &future},
	}
	for i := range seed {
		_, err := store.Vouchers().Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	cases := map[string]error{
		"MISSING":   domainErrors.ErrVoucherNotFound,
		"EXPIRED10": domainErrors.ErrVoucherExpired,
		"LATER":     domainErrors.ErrVoucherNotYetActive,
		"USED":      domainErrors.ErrVoucherUsageExceeded,
		"MIN":       domainErrors.ErrVoucherMinimumNotMet,
		"":          domainErrors.ErrVoucherNotFound,
	}
	for code, want := range cases {
		_, err := uc.Validate(ctx, code, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, want, code)
		var voucherErr *domainErrors.VoucherError
		assert.ErrorAs(t, err, &voucherErr, code)
	}

	v, err := uc.Validate(ctx, "ok", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "OK", v.Code)

	require.NoError(t, uc.Delete(ctx, "ok"))
	_, err = uc.Validate(ctx, "OK", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domainErrors.ErrVoucherNotFound, "deleted vouchers cannot be redeemed")
}

func TestVoucherUseCaseValidateRepositoryError(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	store.Err = errors.New("db down")
	uc := NewVoucherUseCase(store.Vouchers())

	_, err := uc.Validate(context.Background(), "ANY", decimal.NewFromInt(1))
	assert.EqualError(t, err, "db down")
	assert.False(t, errors.Is(err, domainErrors.ErrVoucher))
}

func TestVoucherUseCaseQuote(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewVoucherUseCase(store.Vouchers())
	ctx := context.Background()

	_, err := uc.Create(ctx, &model.Voucher{Code: "pct", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(15), MaxDiscount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	_, discount, err := uc.Quote(ctx, "PCT", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, discount.Equal(decimal.NewFromInt(15)))

	_, discount, err = uc.Quote(ctx, "PCT", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, discount.Equal(decimal.NewFromInt(20)), "percent discount is capped")

	_, _, err = uc.Quote(ctx, "PCT", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	_, _, err = uc.Quote(ctx, "NONE", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domainErrors.ErrVoucherNotFound)
}

func TestVoucherUseCaseAdministration(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewVoucherUseCase(store.Vouchers())
	ctx := context.Background()

	created, err := uc.Create(ctx, &model.Voucher{Code: " spring ", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(5), UsedCount: 9})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", created.Code)
	assert.Zero(t, created.UsedCount)

	_, err = uc.Create(ctx, &model.Voucher{Code: "SPRING", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyExists)

	got, err := uc.Voucher(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	list, err := uc.Vouchers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, uc.Delete(ctx, "SPRING"))
	assert.ErrorIs(t, uc.Delete(ctx, "SPRING"), domainErrors.ErrNotFound)
	_, err = uc.Voucher(ctx, "SPRING")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	list, err = uc.Vouchers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.Create(ctx, &model.Voucher{Code: "SPRING", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyExists, "deleted codes stay reserved")
}

func TestVoucherUseCaseCreateValidation(t *testing.T) {
	uc := NewVoucherUseCase(testhelpers.NewMemoryStore().Vouchers())
	start := time.Now()
	before := start.Add(-time.Hour)
	zero := 0

	cases := map[string]model.Voucher{
		"empty code":     {DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1)},
		"bad type":       {Code: "A", DiscountType: "bogo", DiscountValue: decimal.NewFromInt(1)},
		"zero value":     {Code: "A", DiscountType: model.DiscountFixed},
		"over 100%":      {Code: "A", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(101)},
		"negative cap":   {Code: "A", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(1), MaxDiscount: decimal.NewFromInt(-1)},
		"negative min":   {Code: "A", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1), MinOrderValue: decimal.NewFromInt(-1)},
		"zero max uses":  {Code: "A", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1), MaxUses: &zero},
		"inverted dates": {Code: "A", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1), StartDate: &start, ExpiryDate: &before},
	}
	for name, voucher := range cases {
		v := voucher
		_, err := uc.Create(context.Background(), &v)
		assert.ErrorIs(t, err, domainErrors.ErrValidation, name)
	}
}

func TestVoucherUseCaseCodesAreCaseInsensitive(t *testing.T) {
	uc := NewVoucherUseCase(testhelpers.NewMemoryStore().Vouchers())
	ctx := context.Background()

	code := testhelpers.RandomVoucherCode("promo")
	_, err := uc.Create(ctx, &model.Voucher{Code: strings.ToLower(code), DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(3)})
	require.NoError(t, err)

	voucher, discount, err := uc.Quote(ctx, code, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, code, voucher.Code)
	assert.True(t, discount.Equal(decimal.NewFromInt(3)))
}
