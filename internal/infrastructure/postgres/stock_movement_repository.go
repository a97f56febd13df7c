package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de movimientos de stock (solo INSERT y SELECT).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento. Completa ID y CreatedAt si vienen vacíos.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO stock_movements (id, variant_id, quantity, type, reason, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.VariantID, m.Quantity, string(m.Type), nullable(m.Reason), m.UserID, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByVariant lista movimientos de una variante filtrando opcionalmente por rango [from, to).
func (r *StockMovementRepo) ListByVariant(ctx context.Context, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, variant_id, quantity, type, reason, user_id, created_at
		FROM stock_movements
		WHERE variant_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, variantID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return collectMovements(rows)
}

// ListForReplay devuelve todo el historial en orden cronológico.
func (r *StockMovementRepo) ListForReplay(ctx context.Context, variantID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, variant_id, quantity, type, reason, user_id, created_at
		FROM stock_movements
		WHERE variant_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("list movements for replay: %w", err)
	}
	return collectMovements(rows)
}

// ListStockDrift compara el stock materializado con la suma del ledger de cada variante.
func (r *StockMovementRepo) ListStockDrift(ctx context.Context) ([]repository.StockDrift, error) {
	query := `
		SELECT v.id, v.sku, v.stock, COALESCE(SUM(m.quantity), 0)::BIGINT AS ledger_sum
		FROM product_variants v
		LEFT JOIN stock_movements m ON m.variant_id = v.id
		GROUP BY v.id, v.sku, v.stock
		HAVING v.stock <> COALESCE(SUM(m.quantity), 0)
		ORDER BY v.sku`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock drift: %w", err)
	}
	defer rows.Close()

	var out []repository.StockDrift
	for rows.Next() {
		var d repository.StockDrift
		if err := rows.Scan(&d.VariantID, &d.SKU, &d.Stock, &d.LedgerSum); err != nil {
			return nil, fmt.Errorf("scan stock drift: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		var reason *string
		if err := rows.Scan(&m.ID, &m.VariantID, &m.Quantity, &typ, &reason, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		m.Reason = deref(reason)
		list = append(list, &m)
	}
	return list, rows.Err()
}
