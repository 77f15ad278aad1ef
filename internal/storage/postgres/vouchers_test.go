package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var voucherRowColumns = []string{"id", "code", "discount_type", "discount_value", "max_discount", "min_order_value",
	"max_uses", "used_count", "start_date", "expiry_date", "created_at", "deleted_at"}

func TestVoucherRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &voucherRepository{storage: storage}
	now := time.Now()
	maxUses := 10

	voucher := &model.Voucher{Code: "SPRING", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10), MaxUses: &maxUses}
	args := []any{"SPRING", model.DiscountPercent, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
		pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg()}

	mock.ExpectQuery("INSERT INTO vouchers").WithArgs(args...).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "used_count", "created_at"}).AddRow(int64(1), 0, now))
	created, err := repo.Create(context.Background(), voucher)
	if err != nil || created.ID != 1 || *created.MaxUses != 10 {
		t.Fatalf("unexpected voucher: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO vouchers").WithArgs(args...).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	if _, err := repo.Create(context.Background(), voucher); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO vouchers").WithArgs(args...).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), voucher); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestVoucherRepositoryRead(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &voucherRepository{storage: storage}
	now := time.Now()
	maxUses := 5

	mock.ExpectQuery("FROM vouchers WHERE code=").WithArgs("SPRING").WillReturnRows(
		pgxmockv3.NewRows(voucherRowColumns).AddRow(int64(1), "SPRING", model.DiscountFixed, decimal.NewFromInt(15),
			decimal.Zero, decimal.NewFromInt(50), &maxUses, 2, nil, nil, now, nil))
	v, err := repo.GetByCode(context.Background(), "SPRING")
	if err != nil || v.DiscountType != model.DiscountFixed || v.UsedCount != 2 || *v.MaxUses != 5 || v.DeletedAt != nil {
		t.Fatalf("unexpected voucher: %+v err=%v", v, err)
	}

	mock.ExpectQuery("FROM vouchers WHERE code=").WithArgs("NONE").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByCode(context.Background(), "NONE"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM vouchers WHERE deleted_at IS NULL").WillReturnRows(
		pgxmockv3.NewRows(voucherRowColumns).
			AddRow(int64(2), "B", model.DiscountPercent, decimal.NewFromInt(5), decimal.Zero, decimal.Zero, nil, 0, nil, nil, now, nil).
			AddRow(int64(1), "A", model.DiscountFixed, decimal.NewFromInt(5), decimal.Zero, decimal.Zero, nil, 0, nil, nil, now, nil))
	list, err := repo.List(context.Background())
	if err != nil || len(list) != 2 || list[0].Code != "B" {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	mock.ExpectQuery("FROM vouchers WHERE deleted_at IS NULL").WillReturnError(errors.New("list"))
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestVoucherRepositorySoftDelete(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &voucherRepository{storage: storage}

	mock.ExpectExec("UPDATE vouchers SET deleted_at").WithArgs("SPRING").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SoftDelete(context.Background(), "SPRING"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE vouchers SET deleted_at").WithArgs("SPRING").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.SoftDelete(context.Background(), "SPRING"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE vouchers SET deleted_at").WithArgs("X").WillReturnError(errors.New("exec"))
	if err := repo.SoftDelete(context.Background(), "X"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
