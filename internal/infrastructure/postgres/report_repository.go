package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para los reportes financieros.
// Devuelve filas crudas: la conversión kg/gramo la aplica el caso de uso con inventory.LineAmount.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// snapshotBeginner lo cumple el pool; una pgx.Tx no, y en ese caso ya hay snapshot.
type snapshotBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// ReadSnapshot abre una transacción REPEATABLE READ de solo lectura y ejecuta fn con un repo atado a ella.
func (r *ReportRepo) ReadSnapshot(ctx context.Context, fn func(repo repository.ReportRepository) error) error {
	db, ok := r.q.(snapshotBeginner)
	if !ok {
		return fn(r)
	}
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("report.ReadSnapshot: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(NewReportRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("report.ReadSnapshot: commit: %w", err)
	}
	committed = true
	return nil
}

// GetSalesRevenue suma sales.total de ventas COMPLETED en [from, to).
func (r *ReportRepo) GetSalesRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(total), 0)
	FROM sales
	WHERE status = $1
	  AND created_at >= $2
	  AND created_at <  $3`
	var revenue decimal.Decimal
	if err := r.q.QueryRow(ctx, query, entity.SaleStatusCompleted, from, to).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("report.GetSalesRevenue: %w", err)
	}
	return revenue, nil
}

// ListSoldLines líneas de ventas COMPLETED en [from, to) con unidad y categoría del producto.
func (r *ReportRepo) ListSoldLines(ctx context.Context, from, to time.Time) ([]repository.SoldLine, error) {
	const query = `
	SELECT
	    si.id,
	    si.quantity,
	    si.cost_at_sale,
	    si.price_at_sale,
	    p.unit_of_measure,
	    c.id,
	    c.name
	FROM sales s
	JOIN sale_items si      ON si.sale_id = s.id
	JOIN product_variants v ON v.id       = si.variant_id
	JOIN products p         ON p.id       = v.product_id
	JOIN categories c       ON c.id       = p.category_id
	WHERE s.status = $1
	  AND s.created_at >= $2
	  AND s.created_at <  $3
	ORDER BY si.id`

	rows, err := r.q.Query(ctx, query, entity.SaleStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("report.ListSoldLines: %w", err)
	}
	defer rows.Close()

	var results []repository.SoldLine
	for rows.Next() {
		var row repository.SoldLine
		var uom string
		if err := rows.Scan(
			&row.SaleItemID,
			&row.Quantity,
			&row.CostAtSale,
			&row.PriceAtSale,
			&uom,
			&row.CategoryID,
			&row.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("report.ListSoldLines scan: %w", err)
		}
		row.UnitOfMeasure = entity.UnitOfMeasure(uom)
		results = append(results, row)
	}
	return results, rows.Err()
}

// ListStockValuation todas las variantes con su stock, precios y unidad.
func (r *ReportRepo) ListStockValuation(ctx context.Context) ([]repository.StockValuationRow, error) {
	const query = `
	SELECT v.id, v.stock, v.cost_price, v.sale_price, p.unit_of_measure
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	ORDER BY v.id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report.ListStockValuation: %w", err)
	}
	defer rows.Close()

	var results []repository.StockValuationRow
	for rows.Next() {
		var row repository.StockValuationRow
		var uom string
		if err := rows.Scan(&row.VariantID, &row.Stock, &row.CostPrice, &row.SalePrice, &uom); err != nil {
			return nil, fmt.Errorf("report.ListStockValuation scan: %w", err)
		}
		row.UnitOfMeasure = entity.UnitOfMeasure(uom)
		results = append(results, row)
	}
	return results, rows.Err()
}
