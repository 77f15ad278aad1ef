package postgres

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, code, customer_id, status, subtotal, discount_amount, total_amount, voucher_id,
    shipping_address, payment_method, ordered_at, updated_at`

type orderRepository struct {
	storage *Storage
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Code, &o.CustomerID, &o.Status, &o.Subtotal, &o.DiscountAmount, &o.TotalAmount,
		&o.VoucherID, &o.ShippingAddress, &o.PaymentMethod, &o.OrderedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, draft *model.OrderDraft) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (code, customer_id, status, subtotal, discount_amount, total_amount,
                             voucher_id, shipping_address, payment_method)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                         RETURNING id, ordered_at, updated_at`
	const insertLine = `INSERT INTO order_lines (order_id, variant_id, quantity, unit_price)
                        VALUES ($1, $2, $3, $4) RETURNING id`
	const decrementStock = `UPDATE variants SET stock = stock - $1, updated_at = NOW()
                            WHERE id = $2 AND stock >= $1`
	const redeemVoucher = `UPDATE vouchers SET used_count = used_count + 1
                           WHERE id = $1 AND deleted_at IS NULL AND (max_uses IS NULL OR used_count < max_uses)`

	order := &model.Order{
		Code:            draft.Code,
		CustomerID:      draft.CustomerID,
		Status:          model.OrderStatusPending,
		Subtotal:        draft.Subtotal,
		DiscountAmount:  draft.DiscountAmount,
		TotalAmount:     draft.TotalAmount,
		VoucherID:       draft.VoucherID,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
	}

	// Rows are locked in ascending variant order so concurrent placements cannot deadlock.
	locking := append([]model.OrderLine(nil), draft.Lines...)
	sort.SliceStable(locking, func(i, j int) bool { return locking[i].VariantID < locking[j].VariantID })

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder, order.Code, order.CustomerID, order.Status, order.Subtotal,
			order.DiscountAmount, order.TotalAmount, order.VoucherID, order.ShippingAddress, order.PaymentMethod).
			Scan(&order.ID, &order.OrderedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		order.Lines = make([]model.OrderLine, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			line.OrderID = order.ID
			if err := tx.QueryRow(ctx, insertLine, order.ID, line.VariantID, line.Quantity, line.UnitPrice).Scan(&line.ID); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}

		for _, line := range locking {
			tag, err := tx.Exec(ctx, decrementStock, line.Quantity, line.VariantID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return &domainErrors.ConcurrentStockConflictError{VariantID: line.VariantID}
			}
		}

		if draft.VoucherID != nil {
			tag, err := tx.Exec(ctx, redeemVoucher, *draft.VoucherID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return voucherRejection(ctx, tx, *draft.VoucherID, draft.VoucherCode)
			}
		}

		return enqueueNotification(ctx, tx, order.ID, model.NotificationOrderPlaced)
	})
	if err != nil {
		return nil, translatePlacementError(err)
	}
	return order, nil
}

// voucherRejection tells a voucher deleted since validation apart from one that ran out of uses.
func voucherRejection(ctx context.Context, tx pgx.Tx, voucherID int64, code string) error {
	var deleted bool
	err := tx.QueryRow(ctx, `SELECT deleted_at IS NOT NULL FROM vouchers WHERE id = $1`, voucherID).Scan(&deleted)
	switch {
	case isNoRows(err) || (err == nil && deleted):
		return domainErrors.NewVoucherError(code, domainErrors.VoucherNotFound)
	case err != nil:
		return err
	}
	return domainErrors.NewVoucherError(code, domainErrors.VoucherUsageExceeded)
}

func translatePlacementError(err error) error {
	switch pgErrorCode(err) {
	case pgDeadlockDetected, pgSerializationFailed, pgCheckViolation:
		return &domainErrors.ConcurrentStockConflictError{}
	case pgForeignKeyViolation:
		return domainErrors.ErrNotFound
	}
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return loadOrder(ctx, r.storage.pool, id)
}

func loadOrder(ctx context.Context, q querier, id int64) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	lines, err := loadLines(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[id]
	return order, nil
}

func loadLines(ctx context.Context, q querier, orderIDs []int64) (map[int64][]model.OrderLine, error) {
	const query = `SELECT id, order_id, variant_id, quantity, unit_price
                   FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, id`
	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderLine, len(orderIDs))
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.VariantID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders
                   WHERE ($1::BIGINT = 0 OR customer_id = $1) AND ($2::TEXT = '' OR status = $2)
                   ORDER BY ordered_at DESC, id DESC
                   LIMIT $3 OFFSET $4`
	rows, err := r.storage.pool.Query(ctx, query, filter.CustomerID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		orders []model.Order
		ids    []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := loadLines(ctx, r.storage.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	const lockOrder = `SELECT status FROM orders WHERE id = $1 FOR UPDATE`
	const updateStatus = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	const restoreStock = `UPDATE variants AS v SET stock = v.stock + l.quantity, updated_at = NOW()
                          FROM (SELECT variant_id, SUM(quantity) AS quantity
                                FROM order_lines WHERE order_id = $1 GROUP BY variant_id) AS l
                          WHERE v.id = l.variant_id`

	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var current model.OrderStatus
		if err := tx.QueryRow(ctx, lockOrder, id).Scan(&current); err != nil {
			if isNoRows(err) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if !current.CanTransitionTo(status) {
			return &domainErrors.InvalidTransitionError{From: string(current), To: string(status)}
		}

		tag, err := tx.Exec(ctx, updateStatus, status, id, current)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return &domainErrors.InvalidTransitionError{From: string(current), To: string(status)}
		}

		if status == model.OrderStatusCancelled {
			if _, err := tx.Exec(ctx, restoreStock, id); err != nil {
				return err
			}
		}

		if err := enqueueNotification(ctx, tx, id, model.NotificationOrderStatusChanged); err != nil {
			return err
		}

		order, err = loadOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func enqueueNotification(ctx context.Context, tx pgx.Tx, orderID int64, kind model.NotificationKind) error {
	const query = `INSERT INTO notifications (event_id, order_id, kind) VALUES ($1, $2, $3)`
	_, err := tx.Exec(ctx, query, uuid.NewString(), orderID, kind)
	return err
}
