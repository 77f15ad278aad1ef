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

var variantRowColumns = []string{"id", "product_id", "color", "storage", "ram", "original_price", "sale_price",
	"promotional_price", "promotion_start", "promotion_end", "stock", "created_at", "updated_at"}

func variantRow(rows *pgxmockv3.Rows, id int64, stock int, now time.Time) *pgxmockv3.Rows {
	return rows.AddRow(id, int64(1), "black", "128GB", "8GB", decimal.NewFromInt(70), decimal.NewFromInt(100),
		nil, nil, nil, stock, now, now)
}

func TestProductRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("INSERT INTO products").WithArgs("Phone", "Acme", "phones", "").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	created, err := repo.Create(context.Background(), &model.Product{Name: "Phone", Brand: "Acme", Category: "phones"})
	if err != nil || created.ID != 1 {
		t.Fatalf("unexpected result: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO products").WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), &model.Product{Name: "Phone"}); err == nil {
		t.Fatal("expected error")
	}

	productColumns := []string{"id", "name", "brand", "category", "description", "created_at"}
	mock.ExpectQuery("FROM products WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(productColumns).AddRow(int64(1), "Phone", "Acme", "phones", "", now))
	mock.ExpectQuery("FROM variants WHERE product_id=").WithArgs(int64(1)).WillReturnRows(
		variantRow(variantRow(pgxmockv3.NewRows(variantRowColumns), 10, 3, now), 11, 0, now))
	product, err := repo.GetByID(context.Background(), 1)
	if err != nil || len(product.Variants) != 2 || product.Variants[1].ID != 11 {
		t.Fatalf("unexpected product: %+v err=%v", product, err)
	}

	mock.ExpectQuery("FROM products WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM products WHERE id=").WithArgs(int64(3)).WillReturnRows(
		pgxmockv3.NewRows(productColumns).AddRow(int64(3), "Phone", "Acme", "phones", "", now))
	mock.ExpectQuery("FROM variants WHERE product_id=").WithArgs(int64(3)).WillReturnError(errors.New("variants"))
	if _, err := repo.GetByID(context.Background(), 3); err == nil {
		t.Fatal("expected variants error")
	}

	mock.ExpectQuery("FROM products").WithArgs("Acme", "", 20, 0).WillReturnRows(
		pgxmockv3.NewRows(productColumns).
			AddRow(int64(1), "Phone", "Acme", "phones", "", now).
			AddRow(int64(2), "Tablet", "Acme", "tablets", "", now))
	products, err := repo.List(context.Background(), model.ProductFilter{Brand: "Acme", Limit: 20})
	if err != nil || len(products) != 2 {
		t.Fatalf("unexpected list: %v err=%v", products, err)
	}

	mock.ExpectQuery("FROM products").WithArgs("", "", 20, 0).WillReturnError(errors.New("list"))
	if _, err := repo.List(context.Background(), model.ProductFilter{Limit: 20}); err == nil {
		t.Fatal("expected list error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestVariantRepositoryCreateAndGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &variantRepository{storage: storage}
	now := time.Now()

	variant := &model.Variant{ProductID: 1, Color: "black", OriginalPrice: decimal.NewFromInt(70), SalePrice: decimal.NewFromInt(100), Stock: 5}
	anyArgs := func(productID int64) []any {
		args := []any{productID, "black", "", ""}
		for i := 0; i < 5; i++ {
			args = append(args, pgxmockv3.AnyArg())
		}
		return append(args, 5)
	}

	mock.ExpectQuery("INSERT INTO variants").WithArgs(anyArgs(1)...).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	created, err := repo.Create(context.Background(), variant)
	if err != nil || created.ID != 10 || created.Stock != 5 {
		t.Fatalf("unexpected variant: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO variants").WithArgs(anyArgs(1)...).WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	if _, err := repo.Create(context.Background(), variant); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO variants").WithArgs(anyArgs(1)...).WillReturnError(&pgconn.PgError{Code: pgCheckViolation})
	if _, err := repo.Create(context.Background(), variant); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mock.ExpectQuery("FROM variants WHERE id=").WithArgs(int64(10)).WillReturnRows(variantRow(pgxmockv3.NewRows(variantRowColumns), 10, 5, now))
	got, err := repo.GetByID(context.Background(), 10)
	if err != nil || got.Stock != 5 || got.PromotionalPrice != nil {
		t.Fatalf("unexpected variant: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM variants WHERE id=").WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 11); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestVariantRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &variantRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("UPDATE variants SET color=").WillReturnRows(variantRow(pgxmockv3.NewRows(variantRowColumns), 10, 5, now))
	if _, err := repo.Update(context.Background(), &model.Variant{ID: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("UPDATE variants SET color=").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Update(context.Background(), &model.Variant{ID: 99}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestVariantRepositoryAdjustStock(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &variantRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery(`UPDATE variants SET stock = stock \+ `).WithArgs(3, int64(10)).
		WillReturnRows(variantRow(pgxmockv3.NewRows(variantRowColumns), 10, 8, now))
	v, err := repo.AdjustStock(context.Background(), 10, 3)
	if err != nil || v.Stock != 8 {
		t.Fatalf("unexpected variant: %+v err=%v", v, err)
	}

	mock.ExpectQuery(`UPDATE variants SET stock = stock \+ `).WithArgs(-9, int64(10)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM variants WHERE id=").WithArgs(int64(10)).WillReturnRows(variantRow(pgxmockv3.NewRows(variantRowColumns), 10, 8, now))
	_, err = repo.AdjustStock(context.Background(), 10, -9)
	var stockErr *domainErrors.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Available != 8 || stockErr.Requested != 9 {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	mock.ExpectQuery(`UPDATE variants SET stock = stock \+ `).WithArgs(1, int64(11)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM variants WHERE id=").WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.AdjustStock(context.Background(), 11, 1); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(`UPDATE variants SET stock = stock \+ `).WithArgs(1, int64(12)).WillReturnError(errors.New("boom"))
	if _, err := repo.AdjustStock(context.Background(), 12, 1); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
