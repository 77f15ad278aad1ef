package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// MemoryStore is an in-memory transactional fake of the PostgreSQL storage.
// Every mutating call runs under one mutex, so it behaves like a serializable
// transaction with the same conditional-update rules as the SQL statements.
type MemoryStore struct {
	mu sync.Mutex

	users         *UserRepositoryStub
	products      map[int64]*model.Product
	variants      map[int64]*model.Variant
	vouchers      map[int64]*model.Voucher
	orders        map[int64]*model.Order
	notifications []*model.Notification
	nextID        int64

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
	// BeforeCreate runs before the placement transaction takes the lock.
	BeforeCreate func()
	// Err, when set, fails every call.
	Err error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    NewUserRepositoryStub(),
		products: make(map[int64]*model.Product),
		variants: make(map[int64]*model.Variant),
		vouchers: make(map[int64]*model.Voucher),
		orders:   make(map[int64]*model.Order),
		Now:      time.Now,
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// HealthCheck fails while Err is set.
func (m *MemoryStore) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MemoryStore) Users() repository.UserRepository            { return m.users }
func (m *MemoryStore) Products() repository.ProductRepository      { return memoryProducts{m} }
func (m *MemoryStore) Variants() repository.VariantRepository      { return memoryVariants{m} }
func (m *MemoryStore) Vouchers() repository.VoucherRepository      { return memoryVouchers{m} }
func (m *MemoryStore) Orders() repository.OrderRepository          { return memoryOrders{m} }
func (m *MemoryStore) Statistics() repository.StatisticsRepository { return memoryStatistics{m} }
func (m *MemoryStore) Notifications() repository.NotificationRepository {
	return memoryNotifications{m}
}

// SeedVariant creates a product with one variant priced at salePrice and costing originalPrice.
func (m *MemoryStore) SeedVariant(stock int, salePrice, originalPrice int64) *model.Variant {
	m.mu.Lock()
	defer m.mu.Unlock()
	product := &model.Product{ID: m.id(), Name: fmt.Sprintf("product-%d", m.nextID), CreatedAt: m.now()}
	m.products[product.ID] = product
	variant := &model.Variant{
		ID:            m.id(),
		ProductID:     product.ID,
		OriginalPrice: decimal.NewFromInt(originalPrice),
		SalePrice:     decimal.NewFromInt(salePrice),
		Stock:         stock,
		CreatedAt:     m.now(),
		UpdatedAt:     m.now(),
	}
	m.variants[variant.ID] = variant
	out := *variant
	return &out
}

// Stock returns the current stock of a variant, or -1 when it does not exist.
func (m *MemoryStore) Stock(variantID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.variants[variantID]; ok {
		return v.Stock
	}
	return -1
}

// OrderCount returns the number of persisted orders.
func (m *MemoryStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// Outbox returns a copy of every notification row.
func (m *MemoryStore) Outbox() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, *n)
	}
	return out
}

// SetOrderedAt backdates an order for reporting tests.
func (m *MemoryStore) SetOrderedAt(orderID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.OrderedAt = at
	}
}

func (m *MemoryStore) enqueue(orderID int64, kind model.NotificationKind) {
	now := m.now()
	m.notifications = append(m.notifications, &model.Notification{
		ID:        m.id(),
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Kind:      kind,
		Status:    model.NotificationPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func copyOrder(o *model.Order) *model.Order {
	out := *o
	out.Lines = append([]model.OrderLine(nil), o.Lines...)
	return &out
}

type memoryProducts struct{ m *MemoryStore }

func (r memoryProducts) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	stored := *product
	stored.ID = r.m.id()
	stored.CreatedAt = r.m.now()
	stored.Variants = nil
	r.m.products[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r memoryProducts) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	p, ok := r.m.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *p
	out.Variants = r.m.variantsOf(id)
	return &out, nil
}

func (r memoryProducts) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []model.Product
	for _, p := range r.m.products {
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		item := *p
		item.Variants = r.m.variantsOf(p.ID)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

func (m *MemoryStore) variantsOf(productID int64) []model.Variant {
	var out []model.Variant
	for _, v := range m.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryVariants struct{ m *MemoryStore }

func (r memoryVariants) Create(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if _, ok := r.m.products[variant.ProductID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	stored := *variant
	stored.ID = r.m.id()
	stored.CreatedAt = r.m.now()
	stored.UpdatedAt = stored.CreatedAt
	r.m.variants[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r memoryVariants) GetByID(ctx context.Context, id int64) (*model.Variant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	v, ok := r.m.variants[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (r memoryVariants) Update(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	current, ok := r.m.variants[variant.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	updated := *variant
	updated.ProductID = current.ProductID
	updated.Stock = current.Stock
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.m.now()
	r.m.variants[variant.ID] = &updated
	out := updated
	return &out, nil
}

func (r memoryVariants) AdjustStock(ctx context.Context, id int64, delta int) (*model.Variant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	v, ok := r.m.variants[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if v.Stock+delta < 0 {
		return nil, &domainErrors.InsufficientStockError{VariantID: id, Requested: -delta, Available: v.Stock}
	}
	v.Stock += delta
	v.UpdatedAt = r.m.now()
	out := *v
	return &out, nil
}

type memoryVouchers struct{ m *MemoryStore }

func (r memoryVouchers) Create(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, v := range r.m.vouchers {
		if v.Code == voucher.Code {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	stored := *voucher
	stored.ID = r.m.id()
	stored.CreatedAt = r.m.now()
	r.m.vouchers[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r memoryVouchers) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, v := range r.m.vouchers {
		if v.Code == code {
			out := *v
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryVouchers) List(ctx context.Context) ([]model.Voucher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []model.Voucher
	for _, v := range r.m.vouchers {
		if v.DeletedAt == nil {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memoryVouchers) SoftDelete(ctx context.Context, code string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	for _, v := range r.m.vouchers {
		if v.Code == code && v.DeletedAt == nil {
			now := r.m.now()
			v.DeletedAt = &now
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

type memoryOrders struct{ m *MemoryStore }

func (r memoryOrders) Create(ctx context.Context, draft *model.OrderDraft) (*model.Order, error) {
	if r.m.BeforeCreate != nil {
		r.m.BeforeCreate()
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, line := range draft.Lines {
		v, ok := r.m.variants[line.VariantID]
		if !ok {
			return nil, domainErrors.ErrNotFound
		}
		if v.Stock < line.Quantity {
			return nil, &domainErrors.ConcurrentStockConflictError{VariantID: line.VariantID}
		}
	}

	var voucher *model.Voucher
	if draft.VoucherID != nil {
		v, ok := r.m.vouchers[*draft.VoucherID]
		switch {
		case !ok || v.DeletedAt != nil:
			return nil, domainErrors.NewVoucherError(draft.VoucherCode, domainErrors.VoucherNotFound)
		case v.MaxUses != nil && v.UsedCount >= *v.MaxUses:
			return nil, domainErrors.NewVoucherError(draft.VoucherCode, domainErrors.VoucherUsageExceeded)
		}
		voucher = v
	}

	now := r.m.now()
	order := &model.Order{
		ID:              r.m.id(),
		Code:            draft.Code,
		CustomerID:      draft.CustomerID,
		Status:          model.OrderStatusPending,
		Subtotal:        draft.Subtotal,
		DiscountAmount:  draft.DiscountAmount,
		TotalAmount:     draft.TotalAmount,
		VoucherID:       draft.VoucherID,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		OrderedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range draft.Lines {
		r.m.variants[line.VariantID].Stock -= line.Quantity
		line.ID = r.m.id()
		line.OrderID = order.ID
		order.Lines = append(order.Lines, line)
	}
	if voucher != nil {
		voucher.UsedCount++
	}
	r.m.orders[order.ID] = order
	r.m.enqueue(order.ID, model.NotificationOrderPlaced)
	return copyOrder(order), nil
}

func (r memoryOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	o, ok := r.m.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r memoryOrders) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []model.Order
	for _, o := range r.m.orders {
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderedAt.Equal(out[j].OrderedAt) {
			return out[i].OrderedAt.After(out[j].OrderedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r memoryOrders) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	o, ok := r.m.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, &domainErrors.InvalidTransitionError{From: string(o.Status), To: string(status)}
	}

	o.Status = status
	o.UpdatedAt = r.m.now()
	if status == model.OrderStatusCancelled {
		for _, line := range o.Lines {
			if v, ok := r.m.variants[line.VariantID]; ok {
				v.Stock += line.Quantity
			}
		}
	}
	r.m.enqueue(o.ID, model.NotificationOrderStatusChanged)
	return copyOrder(o), nil
}

type memoryStatistics struct{ m *MemoryStore }

func (r memoryStatistics) RevenueFacts(ctx context.Context, period model.DateRange) ([]model.OrderRevenue, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var facts []model.OrderRevenue
	for _, o := range r.m.orders {
		if o.Status != model.OrderStatusDelivered {
			continue
		}
		if o.OrderedAt.Before(period.From) || !o.OrderedAt.Before(period.To) {
			continue
		}
		profit := decimal.Zero
		for _, line := range o.Lines {
			cost := decimal.Zero
			if v, ok := r.m.variants[line.VariantID]; ok {
				cost = v.OriginalPrice
			}
			profit = profit.Add(line.UnitPrice.Sub(cost).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		facts = append(facts, model.OrderRevenue{OrderID: o.ID, OrderedAt: o.OrderedAt, Total: o.TotalAmount, Profit: profit})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].OrderedAt.Before(facts[j].OrderedAt) })
	return facts, nil
}

type memoryNotifications struct{ m *MemoryStore }

func (r memoryNotifications) ClaimBatch(ctx context.Context, limit int) ([]model.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []model.Notification
	for _, n := range r.m.notifications {
		if len(out) >= limit {
			break
		}
		if n.Status != model.NotificationPending {
			continue
		}
		n.Status = model.NotificationProcessing
		n.UpdatedAt = r.m.now()
		out = append(out, *n)
	}
	return out, nil
}

func (r memoryNotifications) MarkSent(ctx context.Context, id int64) error {
	return r.update(id, func(n *model.Notification) {
		n.Status = model.NotificationSent
	})
}

func (r memoryNotifications) MarkFailed(ctx context.Context, id int64, reason string, maxAttempts int) error {
	return r.update(id, func(n *model.Notification) {
		n.Attempts++
		n.LastError = reason
		if n.Attempts >= maxAttempts {
			n.Status = model.NotificationFailed
		} else {
			n.Status = model.NotificationPending
		}
	})
}

func (r memoryNotifications) update(id int64, apply func(*model.Notification)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	for _, n := range r.m.notifications {
		if n.ID == id {
			apply(n)
			n.UpdatedAt = r.m.now()
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ repository.Factory = (*MemoryStore)(nil)
