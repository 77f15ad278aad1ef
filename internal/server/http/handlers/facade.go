package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (model.Principal, error)
}

// CatalogFacade covers products, variants and stock checks.
type CatalogFacade interface {
	Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	Variant(ctx context.Context, id int64) (*model.Variant, error)
	CreateVariant(ctx context.Context, productID int64, variant *model.Variant) (*model.Variant, error)
	UpdateVariant(ctx context.Context, variant *model.Variant) (*model.Variant, error)
	AdjustStock(ctx context.Context, variantID int64, delta int) (*model.Variant, error)
	CheckAvailability(ctx context.Context, variantID int64, quantity int) (*model.Availability, error)
}

// VoucherFacade covers voucher validation and administration.
type VoucherFacade interface {
	QuoteVoucher(ctx context.Context, code string, amount decimal.Decimal) (*model.Voucher, decimal.Decimal, error)
	CreateVoucher(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error)
	Voucher(ctx context.Context, code string) (*model.Voucher, error)
	Vouchers(ctx context.Context) ([]model.Voucher, error)
	DeleteVoucher(ctx context.Context, code string) error
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, bool, error)
	Order(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error)
	CustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]model.Order, error)
	CancelOrder(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error)
	Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
}

// StatisticsFacade exposes revenue reporting.
type StatisticsFacade interface {
	RevenueStatistics(ctx context.Context, period model.DateRange) (*model.RevenueStatistics, error)
}

// HealthFacade reports backing store reachability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	CatalogFacade
	VoucherFacade
	OrderFacade
	StatisticsFacade
	HealthFacade
}
