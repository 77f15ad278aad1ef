// Package facadetest holds controllable facade stubs for transport tests.
package facadetest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (model.Principal, error)
}

// Register returns "token" unless overridden.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns "token" unless overridden.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken decodes "<role>-<id>" tokens unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (model.Principal, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return testhelpers.ParsePrincipalToken(token)
}

// CatalogFacadeStub simulates catalog and inventory operations.
type CatalogFacadeStub struct {
	ProductsFn      func(context.Context, model.ProductFilter) ([]model.Product, error)
	ProductFn       func(context.Context, int64) (*model.Product, error)
	CreateProductFn func(context.Context, *model.Product) (*model.Product, error)
	VariantFn       func(context.Context, int64) (*model.Variant, error)
	CreateVariantFn func(context.Context, int64, *model.Variant) (*model.Variant, error)
	UpdateVariantFn func(context.Context, *model.Variant) (*model.Variant, error)
	AdjustStockFn   func(context.Context, int64, int) (*model.Variant, error)
	AvailabilityFn  func(context.Context, int64, int) (*model.Availability, error)
}

func (s CatalogFacadeStub) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, filter)
	}
	return []model.Product{{ID: 1, Name: "Phone", Variants: []model.Variant{SampleVariant(2)}}}, nil
}

func (s CatalogFacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "Phone", Variants: []model.Variant{SampleVariant(2)}}, nil
}

func (s CatalogFacadeStub) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if s.CreateProductFn != nil {
		return s.CreateProductFn(ctx, product)
	}
	out := *product
	out.ID = 1
	return &out, nil
}

func (s CatalogFacadeStub) Variant(ctx context.Context, id int64) (*model.Variant, error) {
	if s.VariantFn != nil {
		return s.VariantFn(ctx, id)
	}
	v := SampleVariant(id)
	return &v, nil
}

func (s CatalogFacadeStub) CreateVariant(ctx context.Context, productID int64, variant *model.Variant) (*model.Variant, error) {
	if s.CreateVariantFn != nil {
		return s.CreateVariantFn(ctx, productID, variant)
	}
	out := *variant
	out.ID = 2
	out.ProductID = productID
	return &out, nil
}

func (s CatalogFacadeStub) UpdateVariant(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	if s.UpdateVariantFn != nil {
		return s.UpdateVariantFn(ctx, variant)
	}
	out := *variant
	return &out, nil
}

func (s CatalogFacadeStub) AdjustStock(ctx context.Context, variantID int64, delta int) (*model.Variant, error) {
	if s.AdjustStockFn != nil {
		return s.AdjustStockFn(ctx, variantID, delta)
	}
	v := SampleVariant(variantID)
	v.Stock += delta
	return &v, nil
}

func (s CatalogFacadeStub) CheckAvailability(ctx context.Context, variantID int64, quantity int) (*model.Availability, error) {
	if s.AvailabilityFn != nil {
		return s.AvailabilityFn(ctx, variantID, quantity)
	}
	return &model.Availability{VariantID: variantID, Requested: quantity, Available: 5, InStock: quantity <= 5, UnitPrice: decimal.NewFromInt(100)}, nil
}

// SampleVariant returns a variant priced 100 with 5 units in stock.
func SampleVariant(id int64) model.Variant {
	return model.Variant{
		ID:            id,
		ProductID:     1,
		Color:         "black",
		Storage:       "128GB",
		RAM:           "8GB",
		OriginalPrice: decimal.NewFromInt(70),
		SalePrice:     decimal.NewFromInt(100),
		Stock:         5,
	}
}

// VoucherFacadeStub simulates voucher operations.
type VoucherFacadeStub struct {
	QuoteFn    func(context.Context, string, decimal.Decimal) (*model.Voucher, decimal.Decimal, error)
	CreateFn   func(context.Context, *model.Voucher) (*model.Voucher, error)
	VoucherFn  func(context.Context, string) (*model.Voucher, error)
	VouchersFn func(context.Context) ([]model.Voucher, error)
	DeleteFn   func(context.Context, string) error
}

func (s VoucherFacadeStub) QuoteVoucher(ctx context.Context, code string, amount decimal.Decimal) (*model.Voucher, decimal.Decimal, error) {
	if s.QuoteFn != nil {
		return s.QuoteFn(ctx, code, amount)
	}
	return &model.Voucher{ID: 1, Code: code, DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(10)}, decimal.NewFromInt(10), nil
}

func (s VoucherFacadeStub) CreateVoucher(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, voucher)
	}
	out := *voucher
	out.ID = 1
	return &out, nil
}

func (s VoucherFacadeStub) Voucher(ctx context.Context, code string) (*model.Voucher, error) {
	if s.VoucherFn != nil {
		return s.VoucherFn(ctx, code)
	}
	return &model.Voucher{ID: 1, Code: code, DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10)}, nil
}

func (s VoucherFacadeStub) Vouchers(ctx context.Context) ([]model.Voucher, error) {
	if s.VouchersFn != nil {
		return s.VouchersFn(ctx)
	}
	return []model.Voucher{{ID: 1, Code: "SAVE10", DiscountType: model.DiscountPercent, DiscountValue: decimal.NewFromInt(10)}}, nil
}

func (s VoucherFacadeStub) DeleteVoucher(ctx context.Context, code string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, code)
	}
	return nil
}

// OrderFacadeStub simulates order operations.
type OrderFacadeStub struct {
	PlaceFn          func(context.Context, usecase.PlaceOrderCommand) (*model.Order, bool, error)
	OrderFn          func(context.Context, model.Principal, int64) (*model.Order, error)
	CustomerOrdersFn func(context.Context, int64, int, int) ([]model.Order, error)
	CancelFn         func(context.Context, model.Principal, int64) (*model.Order, error)
	OrdersFn         func(context.Context, model.OrderFilter) ([]model.Order, error)
	UpdateStatusFn   func(context.Context, int64, model.OrderStatus) (*model.Order, error)
}

// SampleOrder returns a pending order of two units at 100.
func SampleOrder(id, customerID int64) *model.Order {
	return &model.Order{
		ID:              id,
		Code:            "code",
		CustomerID:      customerID,
		Status:          model.OrderStatusPending,
		Subtotal:        decimal.NewFromInt(200),
		DiscountAmount:  decimal.Zero,
		TotalAmount:     decimal.NewFromInt(200),
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentCard,
		OrderedAt:       time.Unix(0, 0).UTC(),
		UpdatedAt:       time.Unix(0, 0).UTC(),
		Lines:           []model.OrderLine{{ID: 1, OrderID: id, VariantID: 2, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
	}
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, bool, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, cmd)
	}
	return SampleOrder(1, cmd.CustomerID), true, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, principal, orderID)
	}
	return SampleOrder(orderID, principal.UserID), nil
}

func (s OrderFacadeStub) CustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]model.Order, error) {
	if s.CustomerOrdersFn != nil {
		return s.CustomerOrdersFn(ctx, customerID, limit, offset)
	}
	return []model.Order{*SampleOrder(1, customerID)}, nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, principal, orderID)
	}
	order := SampleOrder(orderID, principal.UserID)
	order.Status = model.OrderStatusCancelled
	return order, nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return []model.Order{*SampleOrder(1, 7)}, nil
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status)
	}
	order := SampleOrder(orderID, 7)
	order.Status = status
	return order, nil
}

// StatisticsFacadeStub returns configured revenue statistics.
type StatisticsFacadeStub struct {
	RevenueFn func(context.Context, model.DateRange) (*model.RevenueStatistics, error)
}

func (s StatisticsFacadeStub) RevenueStatistics(ctx context.Context, period model.DateRange) (*model.RevenueStatistics, error) {
	if s.RevenueFn != nil {
		return s.RevenueFn(ctx, period)
	}
	bucket := model.RevenueBucket{Start: period.From, Orders: 1, Revenue: decimal.NewFromInt(200), Profit: decimal.NewFromInt(60)}
	return &model.RevenueStatistics{
		Range:             period,
		TotalOrders:       1,
		TotalRevenue:      decimal.NewFromInt(200),
		TotalProfit:       decimal.NewFromInt(60),
		AverageOrderValue: decimal.NewFromInt(200),
		AverageProfit:     decimal.NewFromInt(60),
		Daily:             []model.RevenueBucket{bucket},
		Weekly:            []model.RevenueBucket{bucket},
		Monthly:           []model.RevenueBucket{bucket},
	}, nil
}

// HealthFacadeStub fails while Err is set.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) HealthCheck(context.Context) error { return s.Err }

// StorefrontFacadeStub aggregates all facade stubs for router tests.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	VoucherFacadeStub
	OrderFacadeStub
	StatisticsFacadeStub
	HealthFacadeStub
}
