package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const variantColumns = `id, product_id, color, storage, ram, original_price, sale_price,
    promotional_price, promotion_start, promotion_end, stock, created_at, updated_at`

type productRepository struct {
	storage *Storage
}

type variantRepository struct {
	storage *Storage
}

func scanVariant(row rowScanner) (*model.Variant, error) {
	var v model.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.Color, &v.Storage, &v.RAM, &v.OriginalPrice, &v.SalePrice,
		&v.PromotionalPrice, &v.PromotionStart, &v.PromotionEnd, &v.Stock, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (name, brand, category, description) VALUES ($1, $2, $3, $4)
                   RETURNING id, created_at`
	created := *product
	created.Variants = nil
	err := r.storage.pool.QueryRow(ctx, query, product.Name, product.Brand, product.Category, product.Description).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, brand, category, description, created_at FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.storage.pool.Query(ctx, `SELECT `+variantColumns+` FROM variants WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	const query = `SELECT id, name, brand, category, description, created_at
                   FROM products
                   WHERE ($1::TEXT = '' OR brand = $1) AND ($2::TEXT = '' OR category = $2)
                   ORDER BY id
                   LIMIT $3 OFFSET $4`
	rows, err := r.storage.pool.Query(ctx, query, filter.Brand, filter.Category, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- VariantRepository implementation ---

func (r *variantRepository) Create(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	const query = `INSERT INTO variants (product_id, color, storage, ram, original_price, sale_price,
                       promotional_price, promotion_start, promotion_end, stock)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at, updated_at`
	created := *variant
	err := r.storage.pool.QueryRow(ctx, query, variant.ProductID, variant.Color, variant.Storage, variant.RAM,
		variant.OriginalPrice, variant.SalePrice, variant.PromotionalPrice, variant.PromotionStart, variant.PromotionEnd,
		variant.Stock).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return nil, domainErrors.ErrNotFound
		case pgCheckViolation:
			return nil, domainErrors.NewValidationError("stock", "must not be negative")
		}
		return nil, err
	}
	return &created, nil
}

func (r *variantRepository) GetByID(ctx context.Context, id int64) (*model.Variant, error) {
	v, err := scanVariant(r.storage.pool.QueryRow(ctx, `SELECT `+variantColumns+` FROM variants WHERE id=$1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *variantRepository) Update(ctx context.Context, variant *model.Variant) (*model.Variant, error) {
	const query = `UPDATE variants SET color=$1, storage=$2, ram=$3, original_price=$4, sale_price=$5,
                       promotional_price=$6, promotion_start=$7, promotion_end=$8, updated_at=NOW()
                   WHERE id=$9
                   RETURNING ` + variantColumns
	v, err := scanVariant(r.storage.pool.QueryRow(ctx, query, variant.Color, variant.Storage, variant.RAM,
		variant.OriginalPrice, variant.SalePrice, variant.PromotionalPrice, variant.PromotionStart, variant.PromotionEnd,
		variant.ID))
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *variantRepository) AdjustStock(ctx context.Context, id int64, delta int) (*model.Variant, error) {
	const query = `UPDATE variants SET stock = stock + $1, updated_at = NOW()
                   WHERE id = $2 AND stock + $1 >= 0
                   RETURNING ` + variantColumns
	v, err := scanVariant(r.storage.pool.QueryRow(ctx, query, delta, id))
	if err == nil {
		return v, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &domainErrors.InsufficientStockError{VariantID: id, Requested: -delta, Available: current.Stock}
}
