package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const availabilityConcurrency = 4

// maxLineQuantity matches the INTEGER quantity columns, and bounds merged lines too.
const maxLineQuantity = math.MaxInt32

// PlaceOrderLine is one requested variant. UnitPrice is what the client saw, if anything.
type PlaceOrderLine struct {
	VariantID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// PlaceOrderCommand carries a checkout request.
type PlaceOrderCommand struct {
	CustomerID      int64
	ShippingAddress string
	PaymentMethod   model.PaymentMethod
	VoucherCode     string
	IdempotencyKey  string
	Lines           []PlaceOrderLine
}

// OrderUseCase encapsulates order placement and lifecycle logic.
type OrderUseCase struct {
	orders      repository.OrderRepository
	inventory   *InventoryUseCase
	vouchers    *VoucherUseCase
	idempotency repository.IdempotencyStore
	logger      *slog.Logger
	newCode     func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	inventory *InventoryUseCase,
	vouchers *VoucherUseCase,
	idempotency repository.IdempotencyStore,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:      orders,
		inventory:   inventory,
		vouchers:    vouchers,
		idempotency: idempotency,
		logger:      logger,
		newCode:     uuid.NewString,
	}
}

// Place validates stock and voucher, then persists the order atomically.
// The boolean is false when an idempotent replay returned an existing order.
func (u *OrderUseCase) Place(ctx context.Context, cmd PlaceOrderCommand) (order *model.Order, created bool, err error) {
	lines, err := normalizeCommand(&cmd)
	if err != nil {
		return nil, false, err
	}

	if cmd.IdempotencyKey != "" {
		existingID, found, beginErr := u.idempotency.Begin(ctx, cmd.CustomerID, cmd.IdempotencyKey)
		if beginErr != nil {
			return nil, false, beginErr
		}
		if found {
			existing, getErr := u.orders.GetByID(ctx, existingID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		defer func() {
			u.finishIdempotency(ctx, cmd, order, err)
		}()
	}

	draft, err := u.prepare(ctx, cmd, lines)
	if err != nil {
		return nil, false, err
	}

	order, err = u.orders.Create(ctx, draft)
	if err != nil {
		return nil, false, err
	}

	u.logger.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("customer_id", order.CustomerID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, true, nil
}

func (u *OrderUseCase) finishIdempotency(ctx context.Context, cmd PlaceOrderCommand, order *model.Order, err error) {
	ctx = context.WithoutCancel(ctx)
	if err != nil || order == nil {
		if abortErr := u.idempotency.Abort(ctx, cmd.CustomerID, cmd.IdempotencyKey); abortErr != nil {
			u.logger.Warn("failed to release idempotency key", slog.String("error", abortErr.Error()))
		}
		return
	}
	if completeErr := u.idempotency.Complete(ctx, cmd.CustomerID, cmd.IdempotencyKey, order.ID); completeErr != nil {
		u.logger.Warn("failed to store idempotency key", slog.String("error", completeErr.Error()))
	}
}

// prepare runs the pre-transaction checks and builds the draft written by the repository.
func (u *OrderUseCase) prepare(ctx context.Context, cmd PlaceOrderCommand, lines []PlaceOrderLine) (*model.OrderDraft, error) {
	availability, err := u.checkAvailability(ctx, lines)
	if err != nil {
		return nil, err
	}

	orderLines := make([]model.OrderLine, 0, len(lines))
	for i, line := range lines {
		a := availability[i]
		if !a.InStock {
			return nil, &domainErrors.InsufficientStockError{VariantID: a.VariantID, Requested: a.Requested, Available: a.Available}
		}
		if line.UnitPrice != nil && !line.UnitPrice.Equal(a.UnitPrice) {
			return nil, domainErrors.NewValidationError(
				fmt.Sprintf("lines[%d].unit_price", i),
				fmt.Sprintf("price changed to %s", a.UnitPrice.StringFixed(2)),
			)
		}
		orderLines = append(orderLines, model.OrderLine{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: a.UnitPrice,
		})
	}

	subtotal := model.Subtotal(orderLines)
	draft := &model.OrderDraft{
		Code:            u.newCode(),
		CustomerID:      cmd.CustomerID,
		Subtotal:        subtotal,
		DiscountAmount:  decimal.Zero,
		TotalAmount:     subtotal,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		Lines:           orderLines,
	}

	if cmd.VoucherCode != "" {
		voucher, err := u.vouchers.Validate(ctx, cmd.VoucherCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount := voucher.Discount(subtotal)
		draft.VoucherID = &voucher.ID
		draft.VoucherCode = voucher.Code
		draft.DiscountAmount = discount
		draft.TotalAmount = subtotal.Sub(discount)
	}

	return draft, nil
}

// checkAvailability pre-checks every line concurrently. Results keep line order so
// the first failing line is reported deterministically.
func (u *OrderUseCase) checkAvailability(ctx context.Context, lines []PlaceOrderLine) ([]*model.Availability, error) {
	results := make([]*model.Availability, len(lines))
	errs := make([]error, len(lines))

	var g errgroup.Group
	g.SetLimit(availabilityConcurrency)
	for i, line := range lines {
		g.Go(func() error {
			results[i], errs[i] = u.inventory.CheckAvailability(ctx, line.VariantID, line.Quantity)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// normalizeCommand validates the command and merges lines for the same variant.
func normalizeCommand(cmd *PlaceOrderCommand) ([]PlaceOrderLine, error) {
	if cmd.CustomerID <= 0 {
		return nil, domainErrors.NewValidationError("customer_id", "must be positive")
	}
	cmd.ShippingAddress = strings.TrimSpace(cmd.ShippingAddress)
	if cmd.ShippingAddress == "" {
		return nil, domainErrors.NewValidationError("shipping_address", "must not be empty")
	}
	if !cmd.PaymentMethod.Valid() {
		return nil, domainErrors.NewValidationError("payment_method", "unsupported payment method")
	}
	if len(cmd.Lines) == 0 {
		return nil, domainErrors.NewValidationError("lines", "order must contain at least one line")
	}
	cmd.VoucherCode = NormalizeVoucherCode(cmd.VoucherCode)
	cmd.IdempotencyKey = strings.TrimSpace(cmd.IdempotencyKey)

	merged := make([]PlaceOrderLine, 0, len(cmd.Lines))
	index := make(map[int64]int, len(cmd.Lines))
	for i, line := range cmd.Lines {
		if line.VariantID <= 0 {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].variant_id", i), "must be positive")
		}
		if line.Quantity <= 0 {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "must be positive")
		}
		if line.Quantity > maxLineQuantity {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "too large")
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "must not be negative")
		}

		pos, seen := index[line.VariantID]
		if !seen {
			index[line.VariantID] = len(merged)
			merged = append(merged, line)
			continue
		}

		existing := &merged[pos]
		if existing.UnitPrice != nil && line.UnitPrice != nil && !existing.UnitPrice.Equal(*line.UnitPrice) {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "conflicts with an earlier line for the same variant")
		}
		if existing.UnitPrice == nil {
			existing.UnitPrice = line.UnitPrice
		}
		if line.Quantity > maxLineQuantity-existing.Quantity {
			return nil, domainErrors.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "too large")
		}
		existing.Quantity += line.Quantity
	}
	return merged, nil
}

// UpdateStatus moves an order through its lifecycle. Cancelling restores stock.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, domainErrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	order, err := u.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	u.logger.Info("order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("status", string(order.Status)),
	)
	return order, nil
}

// Cancel cancels an order on behalf of its owner.
func (u *OrderUseCase) Cancel(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	order, err := u.Get(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, &domainErrors.InvalidTransitionError{From: string(order.Status), To: string(model.OrderStatusCancelled)}
	}
	return u.UpdateStatus(ctx, orderID, model.OrderStatusCancelled)
}

// Get returns the order if the principal may see it. Foreign orders look missing.
func (u *OrderUseCase) Get(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && order.CustomerID != principal.UserID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]model.Order, error) {
	limit, offset = normalizePage(limit, offset)
	return u.orders.List(ctx, model.OrderFilter{CustomerID: customerID, Limit: limit, Offset: offset})
}

// List returns orders for back-office views.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domainErrors.NewValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return u.orders.List(ctx, filter)
}
