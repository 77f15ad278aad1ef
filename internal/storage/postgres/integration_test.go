//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "store",
				"POSTGRES_PASSWORD": "store",
				"POSTGRES_DB":       "store",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://store:store@%s:%s/store?sslmode=disable", host, port.Port())
	storage, err := New(ctx, dsn, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(storage.Close)
	return storage
}

func seedVariant(t *testing.T, s *Storage, stock int) (*model.User, *model.Variant) {
	t.Helper()
	ctx := context.Background()

	user, err := s.Users().Create(ctx, "buyer-"+uuid.NewString(), "hash", model.RoleCustomer)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	product, err := s.Products().Create(ctx, &model.Product{Name: "Phone"})
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	variant, err := s.Variants().Create(ctx, &model.Variant{
		ProductID:     product.ID,
		OriginalPrice: decimal.NewFromInt(70),
		SalePrice:     decimal.NewFromInt(100),
		Stock:         stock,
	})
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	return user, variant
}

func draftFor(customerID, variantID int64, qty int, voucher *model.Voucher) *model.OrderDraft {
	total := decimal.NewFromInt(int64(100 * qty))
	draft := &model.OrderDraft{
		Code:            uuid.NewString(),
		CustomerID:      customerID,
		Subtotal:        total,
		DiscountAmount:  decimal.Zero,
		TotalAmount:     total,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentCard,
		Lines:           []model.OrderLine{{VariantID: variantID, Quantity: qty, UnitPrice: decimal.NewFromInt(100)}},
	}
	if voucher != nil {
		draft.VoucherID = &voucher.ID
		draft.VoucherCode = voucher.Code
	}
	return draft
}

func TestIntegrationConcurrentPlacementNeverOversells(t *testing.T) {
	s := startPostgres(t)
	user, variant := seedVariant(t, s, 3)

	var (
		mu        sync.Mutex
		successes int
		conflicts int
	)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := s.Orders().Create(context.Background(), draftFor(user.ID, variant.ID, 2, nil))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domainErrors.ErrConcurrentStockConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", successes, conflicts)
	}

	got, err := s.Variants().GetByID(context.Background(), variant.ID)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}
}

func TestIntegrationVoucherRedemptionsNeverExceedCap(t *testing.T) {
	s := startPostgres(t)
	user, variant := seedVariant(t, s, 100)
	maxUses := 3
	voucher, err := s.Vouchers().Create(context.Background(), &model.Voucher{
		Code:          "CAP-" + uuid.NewString(),
		DiscountType:  model.DiscountFixed,
		DiscountValue: decimal.NewFromInt(5),
		MaxUses:       &maxUses,
	})
	if err != nil {
		t.Fatalf("voucher: %v", err)
	}

	var (
		mu       sync.Mutex
		redeemed int
	)
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := s.Orders().Create(context.Background(), draftFor(user.ID, variant.ID, 1, voucher))
			if err == nil {
				mu.Lock()
				redeemed++
				mu.Unlock()
				return nil
			}
			if errors.Is(err, domainErrors.ErrVoucherUsageExceeded) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Vouchers().GetByCode(context.Background(), voucher.Code)
	if err != nil {
		t.Fatalf("voucher: %v", err)
	}
	if redeemed != maxUses || got.UsedCount != maxUses {
		t.Fatalf("expected %d redemptions, got %d (used_count %d)", maxUses, redeemed, got.UsedCount)
	}

	stock, err := s.Variants().GetByID(context.Background(), variant.ID)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	if stock.Stock != 100-maxUses {
		t.Fatalf("rejected placements must not consume stock, got %d", stock.Stock)
	}
}

func TestIntegrationCancelRestoresStockOnce(t *testing.T) {
	s := startPostgres(t)
	user, variant := seedVariant(t, s, 5)
	ctx := context.Background()

	order, err := s.Orders().Create(ctx, draftFor(user.ID, variant.ID, 2, nil))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := s.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	got, err := s.Variants().GetByID(ctx, variant.ID)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", got.Stock)
	}

	batch, err := s.Notifications().ClaimBatch(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected placement and cancellation notifications, got %d", len(batch))
	}
}

func TestIntegrationRevenueFactsOnlyDelivered(t *testing.T) {
	s := startPostgres(t)
	user, variant := seedVariant(t, s, 10)
	ctx := context.Background()

	delivered, err := s.Orders().Create(ctx, draftFor(user.ID, variant.ID, 2, nil))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	for _, status := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusShipping, model.OrderStatusDelivered} {
		if _, err := s.Orders().UpdateStatus(ctx, delivered.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
	if _, err := s.Orders().Create(ctx, draftFor(user.ID, variant.ID, 1, nil)); err != nil {
		t.Fatalf("place pending: %v", err)
	}

	now := time.Now()
	facts, err := s.Statistics().RevenueFacts(ctx, model.DateRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("facts: %v", err)
	}
	if len(facts) != 1 || facts[0].OrderID != delivered.ID {
		t.Fatalf("unexpected facts: %+v", facts)
	}
	if !facts[0].Profit.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected profit 60, got %s", facts[0].Profit)
	}
}
