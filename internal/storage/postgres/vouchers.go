package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const voucherColumns = `id, code, discount_type, discount_value, max_discount, min_order_value,
    max_uses, used_count, start_date, expiry_date, created_at, deleted_at`

type voucherRepository struct {
	storage *Storage
}

func scanVoucher(row rowScanner) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(&v.ID, &v.Code, &v.DiscountType, &v.DiscountValue, &v.MaxDiscount, &v.MinOrderValue,
		&v.MaxUses, &v.UsedCount, &v.StartDate, &v.ExpiryDate, &v.CreatedAt, &v.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *voucherRepository) Create(ctx context.Context, voucher *model.Voucher) (*model.Voucher, error) {
	const query = `INSERT INTO vouchers (code, discount_type, discount_value, max_discount, min_order_value,
                       max_uses, start_date, expiry_date)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING id, used_count, created_at`
	created := *voucher
	err := r.storage.pool.QueryRow(ctx, query, voucher.Code, voucher.DiscountType, voucher.DiscountValue,
		voucher.MaxDiscount, voucher.MinOrderValue, voucher.MaxUses, voucher.StartDate, voucher.ExpiryDate).
		Scan(&created.ID, &created.UsedCount, &created.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	v, err := scanVoucher(r.storage.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code=$1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *voucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+voucherColumns+` FROM vouchers
        WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *voucherRepository) SoftDelete(ctx context.Context, code string) error {
	const query = `UPDATE vouchers SET deleted_at = NOW() WHERE code = $1 AND deleted_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
