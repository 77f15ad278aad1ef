package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/usecase"
)

// StorefrontFacade is the single entry point transport and workers use to reach use cases.
type StorefrontFacade struct {
	auth          *usecase.AuthUseCase
	catalog       *usecase.CatalogUseCase
	inventory     *usecase.InventoryUseCase
	vouchers      *usecase.VoucherUseCase
	orders        *usecase.OrderUseCase
	statistics    *usecase.StatisticsUseCase
	notifications *usecase.NotificationUseCase
	health        repository.HealthChecker
}

// NewStorefrontFacade wires use cases into the facade.
func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	inventory *usecase.InventoryUseCase,
	vouchers *usecase.VoucherUseCase,
	orders *usecase.OrderUseCase,
	statistics *usecase.StatisticsUseCase,
	notifications *usecase.NotificationUseCase,
	health repository.HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:          auth,
		catalog:       catalog,
		inventory:     inventory,
		vouchers:      vouchers,
		orders:        orders,
		statistics:    statistics,
		notifications: notifications,
		health:        health,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) ParseToken(token string) (model.Principal, error) {
	return f.auth.ParseToken(token)
}

// EnsureAdmin creates the bootstrap administrator if it does not exist yet.
func (f *StorefrontFacade) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	_, created, err := f.auth.EnsureAdmin(ctx, login, password)
	return created, err
}

func (f *StorefrontFacade) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return f.catalog.Products(ctx, filter)
}

func (f *StorefrontFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Product(ctx, id)
}

func (f *StorefrontFacade) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	return f.catalog.CreateProduct(ctx, product)
}

func (f *StorefrontFacade) Variant(ctx context.Context, id int64) (*model.Variant, error) {
	return f.catalog.Variant(ctx, id)
}

func (f *StorefrontFacade) CreateVariant(ctx context.Context, productID int64, variant *model.Variant) (*model.Variant, error) {
	return f.catalog.CreateVariant(ctx, productID, variant)
}

func (f *StorefrontFacade) UpdateVariant(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	return f.catalog.UpdateVariant(ctx, variant)
}

func (f *StorefrontFacade) AdjustStock(ctx context.Context, variantID int64, delta int) (*model.Variant, error) {
	return f.catalog.AdjustStock(ctx, variantID, delta)
}

func (f *StorefrontFacade) CheckAvailability(ctx context.Context, variantID int64, quantity int) (*model.Availability, error) {
	return f.inventory.CheckAvailability(ctx, variantID, quantity)
}

// QuoteVoucher validates the code for an order amount and returns the discount it grants.
func (f *StorefrontFacade) QuoteVoucher(ctx context.Context, code string, amount decimal.Decimal) (*model.Voucher, decimal.Decimal, error) {
	return f.vouchers.Quote(ctx, code, amount)
}

func (f *StorefrontFacade) CreateVoucher(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error) {
	return f.vouchers.Create(ctx, voucher)
}

func (f *StorefrontFacade) Voucher(ctx context.Context, code string) (*model.Voucher, error) {
	return f.vouchers.Voucher(ctx, code)
}

func (f *StorefrontFacade) Vouchers(ctx context.Context) ([]model.Voucher, error) {
	return f.vouchers.Vouchers(ctx)
}

func (f *StorefrontFacade) DeleteVoucher(ctx context.Context, code string) error {
	return f.vouchers.Delete(ctx, code)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, bool, error) {
	return f.orders.Place(ctx, cmd)
}

func (f *StorefrontFacade) Order(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	return f.orders.Get(ctx, principal, orderID)
}

func (f *StorefrontFacade) CustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]model.Order, error) {
	return f.orders.ListByCustomer(ctx, customerID, limit, offset)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	return f.orders.Cancel(ctx, principal, orderID)
}

func (f *StorefrontFacade) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.orders.List(ctx, filter)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, orderID, status)
}

func (f *StorefrontFacade) RevenueStatistics(ctx context.Context, period model.DateRange) (*model.RevenueStatistics, error) {
	return f.statistics.Revenue(ctx, period)
}

func (f *StorefrontFacade) PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return f.notifications.Claim(ctx, limit)
}

func (f *StorefrontFacade) DeliverNotification(ctx context.Context, n model.Notification, maxAttempts int) error {
	return f.notifications.Deliver(ctx, n, maxAttempts)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
