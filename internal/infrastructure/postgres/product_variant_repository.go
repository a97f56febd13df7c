package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductVariantRepository = (*ProductVariantRepo)(nil)

// ProductVariantRepo implementación de ProductVariantRepository sobre PostgreSQL (usable con pool o tx).
type ProductVariantRepo struct {
	q Querier
}

// NewProductVariantRepository construye el adaptador de variantes. Pasar pool o tx (Querier).
func NewProductVariantRepository(q Querier) *ProductVariantRepo {
	return &ProductVariantRepo{q: q}
}

const variantWithProductColumns = `
	v.id, v.product_id, v.name, v.sku, v.stock, v.cost_price, v.sale_price, v.updated_at,
	p.id, p.owner_id, p.category_id, p.name, p.unit_of_measure, p.created_at`

func scanVariantWithProduct(row pgx.Row) (*entity.VariantWithProduct, error) {
	var vp entity.VariantWithProduct
	var uom string
	err := row.Scan(
		&vp.Variant.ID, &vp.Variant.ProductID, &vp.Variant.Name, &vp.Variant.SKU, &vp.Variant.Stock,
		&vp.Variant.CostPrice, &vp.Variant.SalePrice, &vp.Variant.UpdatedAt,
		&vp.Product.ID, &vp.Product.OwnerID, &vp.Product.CategoryID, &vp.Product.Name, &uom, &vp.Product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	vp.Product.UnitOfMeasure = entity.UnitOfMeasure(uom)
	return &vp, nil
}

// GetWithProduct obtiene la variante junto con su producto. Devuelve nil, nil si no existe.
func (r *ProductVariantRepo) GetWithProduct(ctx context.Context, variantID string) (*entity.VariantWithProduct, error) {
	if !validID(variantID) {
		return nil, nil
	}
	query := `SELECT` + variantWithProductColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1`
	vp, err := scanVariantWithProduct(r.q.QueryRow(ctx, query, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return vp, nil
}

// GetForUpdate obtiene la variante y bloquea su fila (SELECT FOR UPDATE OF v).
func (r *ProductVariantRepo) GetForUpdate(ctx context.Context, variantID string) (*entity.VariantWithProduct, error) {
	if !validID(variantID) {
		return nil, nil
	}
	query := `SELECT` + variantWithProductColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
		FOR UPDATE OF v`
	vp, err := scanVariantWithProduct(r.q.QueryRow(ctx, query, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant for update: %w", err)
	}
	return vp, nil
}

// DecrementStock resta qty en una única escritura condicional; false si el stock no alcanzaba.
func (r *ProductVariantRepo) DecrementStock(ctx context.Context, variantID string, qty int64) (bool, error) {
	query := `
		UPDATE product_variants
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`
	tag, err := r.q.Exec(ctx, query, variantID, qty)
	if err != nil {
		if isCheckViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementStock suma qty sin condición.
func (r *ProductVariantRepo) IncrementStock(ctx context.Context, variantID string, qty int64) error {
	query := `
		UPDATE product_variants
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, variantID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCostPrice actualiza el costo promedio ponderado.
func (r *ProductVariantRepo) UpdateCostPrice(ctx context.Context, variantID string, cost decimal.Decimal) error {
	query := `UPDATE product_variants SET cost_price = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, variantID, cost)
	if err != nil {
		return fmt.Errorf("update cost price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
