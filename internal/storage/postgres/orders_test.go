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

var orderRowColumns = []string{"id", "code", "customer_id", "status", "subtotal", "discount_amount", "total_amount",
	"voucher_id", "shipping_address", "payment_method", "ordered_at", "updated_at"}

var lineRowColumns = []string{"id", "order_id", "variant_id", "quantity", "unit_price"}

func sampleDraft(voucherID *int64) *model.OrderDraft {
	return &model.OrderDraft{
		Code:            "0b8f6c1e-5d7a-4a53-9f43-5d0c8c1b2f11",
		CustomerID:      7,
		Subtotal:        decimal.NewFromInt(300),
		DiscountAmount:  decimal.Zero,
		TotalAmount:     decimal.NewFromInt(300),
		VoucherID:       voucherID,
		VoucherCode:     "SPRING",
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentCard,
		Lines: []model.OrderLine{
			{VariantID: 20, Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
			{VariantID: 10, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
	}
}

func expectOrderHeader(mock pgxmockv3.PgxPoolIface, now time.Time) {
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmockv3.AnyArg(), int64(7), model.OrderStatusPending, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
			pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), "1 Main St", model.PaymentCard).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "ordered_at", "updated_at"}).AddRow(int64(100), now, now))
}

func expectLineInsert(mock pgxmockv3.PgxPoolIface, lineID, variantID int64, qty int) {
	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(100), variantID, qty, pgxmockv3.AnyArg()).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(lineID))
}

// expectDraftLines covers sampleDraft: lines inserted as given, then stock taken lowest variant first.
func expectDraftLines(mock pgxmockv3.PgxPoolIface, affected10, affected20 int64) {
	expectLineInsert(mock, 1, 20, 1)
	expectLineInsert(mock, 2, 10, 2)
	mock.ExpectExec("UPDATE variants SET stock = stock - ").WithArgs(2, int64(10)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", affected10))
	if affected10 == 0 {
		return
	}
	mock.ExpectExec("UPDATE variants SET stock = stock - ").WithArgs(1, int64(20)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", affected20))
}

func TestOrderRepositoryCreate(t *testing.T) {
	now := time.Now()

	t.Run("success keeps line order and locks variants ascending", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}
		voucherID := int64(3)

		mock.ExpectBegin()
		expectOrderHeader(mock, now)
		expectDraftLines(mock, 1, 1)
		mock.ExpectExec("UPDATE vouchers SET used_count = used_count").WithArgs(int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectExec("INSERT INTO notifications").WithArgs(pgxmockv3.AnyArg(), int64(100), model.NotificationOrderPlaced).
			WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectCommit()

		order, err := repo.Create(context.Background(), sampleDraft(&voucherID))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID != 100 || order.Status != model.OrderStatusPending || len(order.Lines) != 2 {
			t.Fatalf("unexpected order: %+v", order)
		}
		if order.Lines[0].VariantID != 20 || order.Lines[0].ID != 1 || order.Lines[1].VariantID != 10 || order.Lines[1].OrderID != 100 {
			t.Fatalf("lines must come back in request order: %+v", order.Lines)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("conditional decrement finds no stock", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		expectOrderHeader(mock, now)
		expectDraftLines(mock, 1, 0)
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), sampleDraft(nil))
		var conflict *domainErrors.ConcurrentStockConflictError
		if !errors.As(err, &conflict) || conflict.VariantID != 20 {
			t.Fatalf("expected conflict on variant 20, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	voucherCases := []struct {
		name    string
		deleted func(*pgxmockv3.ExpectedQuery)
		want    error
	}{
		{
			name: "voucher exhausted rolls back",
			deleted: func(q *pgxmockv3.ExpectedQuery) {
				q.WillReturnRows(pgxmockv3.NewRows([]string{"deleted"}).AddRow(false))
			},
			want: domainErrors.ErrVoucherUsageExceeded,
		},
		{
			name: "voucher deleted since validation",
			deleted: func(q *pgxmockv3.ExpectedQuery) {
				q.WillReturnRows(pgxmockv3.NewRows([]string{"deleted"}).AddRow(true))
			},
			want: domainErrors.ErrVoucherNotFound,
		},
		{
			name:    "voucher row gone",
			deleted: func(q *pgxmockv3.ExpectedQuery) { q.WillReturnError(pgx.ErrNoRows) },
			want:    domainErrors.ErrVoucherNotFound,
		},
	}
	for _, tc := range voucherCases {
		t.Run(tc.name, func(t *testing.T) {
			storage, mock := newMockStorage(t)
			defer mock.Close()
			repo := &orderRepository{storage: storage}
			voucherID := int64(3)

			mock.ExpectBegin()
			expectOrderHeader(mock, now)
			expectDraftLines(mock, 1, 1)
			mock.ExpectExec("UPDATE vouchers SET used_count = used_count").WithArgs(int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
			tc.deleted(mock.ExpectQuery("SELECT deleted_at IS NOT NULL FROM vouchers").WithArgs(int64(3)))
			mock.ExpectRollback()

			_, err := repo.Create(context.Background(), sampleDraft(&voucherID))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations not met: %v", err)
			}
		})
	}

	t.Run("deadlock maps to stock conflict", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		expectOrderHeader(mock, now)
		expectLineInsert(mock, 1, 20, 1)
		expectLineInsert(mock, 2, 10, 2)
		mock.ExpectExec("UPDATE variants SET stock = stock - ").WithArgs(2, int64(10)).
			WillReturnError(&pgconn.PgError{Code: pgDeadlockDetected})
		mock.ExpectRollback()

		if _, err := repo.Create(context.Background(), sampleDraft(nil)); !errors.Is(err, domainErrors.ErrConcurrentStockConflict) {
			t.Fatalf("expected stock conflict, got %v", err)
		}
	})

	t.Run("missing variant maps to not found", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		expectOrderHeader(mock, now)
		mock.ExpectQuery("INSERT INTO order_lines").WithArgs(int64(100), int64(20), 1, pgxmockv3.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
		mock.ExpectRollback()

		if _, err := repo.Create(context.Background(), sampleDraft(nil)); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("header insert error", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("insert"))
		mock.ExpectRollback()

		if _, err := repo.Create(context.Background(), sampleDraft(nil)); err == nil || err.Error() != "insert" {
			t.Fatalf("expected insert error, got %v", err)
		}
	})
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).AddRow(int64(1), "code", int64(7), model.OrderStatusConfirmed,
			decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(50), nil, "addr", model.PaymentCashOnDelivery, now, now))
	mock.ExpectQuery("FROM order_lines WHERE order_id = ANY").WithArgs([]int64{1}).WillReturnRows(
		pgxmockv3.NewRows(lineRowColumns).AddRow(int64(5), int64(1), int64(10), 2, decimal.NewFromInt(25)))

	order, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusConfirmed || order.VoucherID != nil || len(order.Lines) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.Lines[0].UnitPrice.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected unit price: %s", order.Lines[0].UnitPrice)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(3)).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).AddRow(int64(3), "code", int64(7), model.OrderStatusPending,
			decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(50), nil, "addr", model.PaymentCard, now, now))
	mock.ExpectQuery("FROM order_lines WHERE order_id = ANY").WithArgs([]int64{3}).WillReturnError(errors.New("lines"))
	if _, err := repo.GetByID(context.Background(), 3); err == nil {
		t.Fatal("expected lines error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE").WithArgs(int64(7), "", 10, 0).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).
			AddRow(int64(2), "b", int64(7), model.OrderStatusPending, decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(10), nil, "addr", model.PaymentCard, now, now).
			AddRow(int64(1), "a", int64(7), model.OrderStatusDelivered, decimal.NewFromInt(20), decimal.Zero, decimal.NewFromInt(20), nil, "addr", model.PaymentCard, now, now))
	mock.ExpectQuery("FROM order_lines WHERE order_id = ANY").WithArgs([]int64{2, 1}).WillReturnRows(
		pgxmockv3.NewRows(lineRowColumns).
			AddRow(int64(1), int64(1), int64(10), 2, decimal.NewFromInt(10)).
			AddRow(int64(2), int64(2), int64(11), 1, decimal.NewFromInt(10)))

	orders, err := repo.List(context.Background(), model.OrderFilter{CustomerID: 7, Limit: 10})
	if err != nil || len(orders) != 2 {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}
	if len(orders[0].Lines) != 1 || orders[0].Lines[0].VariantID != 11 {
		t.Fatalf("lines attached to wrong order: %+v", orders[0])
	}

	mock.ExpectQuery("FROM orders WHERE").WithArgs(int64(0), "delivered", 5, 5).WillReturnRows(pgxmockv3.NewRows(orderRowColumns))
	orders, err = repo.List(context.Background(), model.OrderFilter{Status: model.OrderStatusDelivered, Limit: 5, Offset: 5})
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders WHERE").WithArgs(int64(8), "", 10, 0).WillReturnError(errors.New("query"))
	if _, err := repo.List(context.Background(), model.OrderFilter{CustomerID: 8, Limit: 10}); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM orders WHERE").WithArgs(int64(9), "", 10, 0).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).
			AddRow("bad", "a", int64(7), model.OrderStatusDelivered, decimal.NewFromInt(20), decimal.Zero, decimal.NewFromInt(20), nil, "addr", model.PaymentCard, now, now))
	if _, err := repo.List(context.Background(), model.OrderFilter{CustomerID: 9, Limit: 10}); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.List(context.Background(), model.OrderFilter{Limit: 1}); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	now := time.Now()

	expectReload := func(mock pgxmockv3.PgxPoolIface, status model.OrderStatus) {
		mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(1)).WillReturnRows(
			pgxmockv3.NewRows(orderRowColumns).AddRow(int64(1), "code", int64(7), status,
				decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(50), nil, "addr", model.PaymentCard, now, now))
		mock.ExpectQuery("FROM order_lines WHERE order_id = ANY").WithArgs([]int64{1}).WillReturnRows(
			pgxmockv3.NewRows(lineRowColumns).AddRow(int64(5), int64(1), int64(10), 2, decimal.NewFromInt(25)))
	}

	t.Run("cancel restores stock in the same transaction", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusPending))
		mock.ExpectExec("UPDATE orders SET status = ").WithArgs(model.OrderStatusCancelled, int64(1), model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE variants AS v SET stock = v.stock").WithArgs(int64(1)).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectExec("INSERT INTO notifications").WithArgs(pgxmockv3.AnyArg(), int64(1), model.NotificationOrderStatusChanged).
			WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		expectReload(mock, model.OrderStatusCancelled)
		mock.ExpectCommit()

		order, err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != model.OrderStatusCancelled {
			t.Fatalf("unexpected status %s", order.Status)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("forward transition leaves stock alone", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusConfirmed))
		mock.ExpectExec("UPDATE orders SET status = ").WithArgs(model.OrderStatusShipping, int64(1), model.OrderStatusConfirmed).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectExec("INSERT INTO notifications").WithArgs(pgxmockv3.AnyArg(), int64(1), model.NotificationOrderStatusChanged).
			WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		expectReload(mock, model.OrderStatusShipping)
		mock.ExpectCommit()

		if _, err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusShipping); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("second cancel is rejected without touching stock", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusCancelled))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusCancelled)
		var transition *domainErrors.InvalidTransitionError
		if !errors.As(err, &transition) || transition.From != "cancelled" {
			t.Fatalf("expected invalid transition, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("status changed underneath", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusPending))
		mock.ExpectExec("UPDATE orders SET status = ").WithArgs(model.OrderStatusConfirmed, int64(1), model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		if _, err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusConfirmed); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		if _, err := repo.UpdateStatus(context.Background(), 9, model.OrderStatusConfirmed); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("restore failure rolls back", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = ").WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusConfirmed))
		mock.ExpectExec("UPDATE orders SET status = ").WithArgs(model.OrderStatusCancelled, int64(1), model.OrderStatusConfirmed).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE variants AS v SET stock = v.stock").WithArgs(int64(1)).WillReturnError(errors.New("restore"))
		mock.ExpectRollback()

		if _, err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusCancelled); err == nil {
			t.Fatal("expected restore error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})
}
