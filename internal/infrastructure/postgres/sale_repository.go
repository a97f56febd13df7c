package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas de venta sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, status, payment_status, total, user_id, created_at, cancelled_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(&s.ID, &s.Status, &s.PaymentStatus, &s.Total, &s.UserID, &s.CreatedAt, &s.CancelledAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO sales (id, status, payment_status, total, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Status, s.PaymentStatus, s.Total, s.UserID, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea con el costo y precio congelados.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_items (id, sale_id, variant_id, quantity, cost_at_sale, price_at_sale, settled_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SaleID, item.VariantID, item.Quantity, item.CostAtSale, item.PriceAtSale, item.SettledQuantity,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// GetByID obtiene una venta. Devuelve nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id, "get sale")
}

// GetForUpdate bloquea la venta en modo exclusivo.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id, "get sale for update")
}

// GetForShare bloquea la venta en modo compartido: varias liquidaciones pueden convivir,
// pero una anulación (FOR UPDATE) espera a que terminen.
func (r *SaleRepo) GetForShare(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR SHARE`, id, "get sale for share")
}

func (r *SaleRepo) get(ctx context.Context, query, id, op string) (*entity.Sale, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// ListItems lista las líneas de una venta.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, variant_id, quantity, cost_at_sale, price_at_sale, settled_quantity
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.VariantID, &it.Quantity, &it.CostAtSale, &it.PriceAtSale, &it.SettledQuantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Cancel anula la venta solo si sigue COMPLETED.
func (r *SaleRepo) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE sales SET status = $2, cancelled_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, id, entity.SaleStatusCancelled, at, entity.SaleStatusCompleted)
	if err != nil {
		return false, fmt.Errorf("cancel sale: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPaid pasa el pago a PAID solo si la venta sigue COMPLETED y PENDING.
func (r *SaleRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	query := `
		UPDATE sales SET payment_status = $2
		WHERE id = $1 AND status = $3 AND payment_status = $4`
	tag, err := r.q.Exec(ctx, query, id, entity.PaymentStatusPaid, entity.SaleStatusCompleted, entity.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark sale paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetSettleableItem obtiene la línea con el dueño y la unidad de su producto.
func (r *SaleRepo) GetSettleableItem(ctx context.Context, saleItemID string) (*repository.SettleableItem, error) {
	if !validID(saleItemID) {
		return nil, nil
	}
	query := `
		SELECT si.id, si.sale_id, si.variant_id, si.quantity, si.cost_at_sale, si.price_at_sale, si.settled_quantity,
		       p.owner_id, p.unit_of_measure
		FROM sale_items si
		JOIN product_variants v ON v.id = si.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE si.id = $1`
	var out repository.SettleableItem
	var uom string
	it := &out.Item
	err := r.q.QueryRow(ctx, query, saleItemID).Scan(
		&it.ID, &it.SaleID, &it.VariantID, &it.Quantity, &it.CostAtSale, &it.PriceAtSale, &it.SettledQuantity,
		&out.OwnerID, &uom,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settleable item: %w", err)
	}
	out.UnitOfMeasure = entity.UnitOfMeasure(uom)
	return &out, nil
}

// AdvanceSettled suma qty a settled_quantity en una escritura condicional.
// Dos liquidaciones concurrentes de la misma línea no pueden superar la cantidad vendida.
func (r *SaleRepo) AdvanceSettled(ctx context.Context, saleItemID string, qty int64) (bool, error) {
	query := `
		UPDATE sale_items
		SET settled_quantity = settled_quantity + $2
		WHERE id = $1 AND settled_quantity + $2 <= quantity`
	tag, err := r.q.Exec(ctx, query, saleItemID, qty)
	if err != nil {
		if isCheckViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("advance settled quantity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListPendingByOwner líneas con saldo pendiente de ventas COMPLETED y PAID de productos del dueño.
func (r *SaleRepo) ListPendingByOwner(ctx context.Context, ownerID string) ([]repository.PendingSaleItem, error) {
	query := `
		SELECT si.id, si.sale_id, si.variant_id, v.name, p.name, p.unit_of_measure,
		       si.quantity, si.settled_quantity, si.cost_at_sale, s.created_at
		FROM sale_items si
		JOIN sales s            ON s.id = si.sale_id
		JOIN product_variants v ON v.id = si.variant_id
		JOIN products p         ON p.id = v.product_id
		WHERE p.owner_id = $1
		  AND s.status = $2
		  AND s.payment_status = $3
		  AND si.settled_quantity < si.quantity
		ORDER BY s.created_at, si.id`
	rows, err := r.q.Query(ctx, query, ownerID, entity.SaleStatusCompleted, entity.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("list pending sale items: %w", err)
	}
	defer rows.Close()

	var out []repository.PendingSaleItem
	for rows.Next() {
		var p repository.PendingSaleItem
		var uom string
		if err := rows.Scan(
			&p.SaleItemID, &p.SaleID, &p.VariantID, &p.VariantName, &p.ProductName, &uom,
			&p.Quantity, &p.SettledQuantity, &p.CostAtSale, &p.SoldAt,
		); err != nil {
			return nil, fmt.Errorf("scan pending sale item: %w", err)
		}
		p.UnitOfMeasure = entity.UnitOfMeasure(uom)
		out = append(out, p)
	}
	return out, rows.Err()
}
