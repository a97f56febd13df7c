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
	"github.com/shopspring/decimal"
)

var (
	_ repository.BalanceAdjustmentRepository = (*BalanceAdjustmentRepo)(nil)
	_ repository.SettlementRepository        = (*SettlementRepo)(nil)
)

// BalanceAdjustmentRepo ajustes manuales al saldo de los dueños.
type BalanceAdjustmentRepo struct {
	q Querier
}

// NewBalanceAdjustmentRepository construye el adaptador de ajustes.
func NewBalanceAdjustmentRepository(q Querier) *BalanceAdjustmentRepo {
	return &BalanceAdjustmentRepo{q: q}
}

const adjustmentColumns = `id, owner_id, amount, description, is_applied, settlement_id, applied_at, created_by, created_at`

func scanAdjustment(row pgx.Row) (*entity.BalanceAdjustment, error) {
	var a entity.BalanceAdjustment
	var settlementID *string
	if err := row.Scan(
		&a.ID, &a.OwnerID, &a.Amount, &a.Description, &a.IsApplied, &settlementID, &a.AppliedAt, &a.CreatedBy, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.SettlementID = deref(settlementID)
	return &a, nil
}

// Create inserta un ajuste no aplicado.
func (r *BalanceAdjustmentRepo) Create(ctx context.Context, a *entity.BalanceAdjustment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO balance_adjustments (id, owner_id, amount, description, is_applied, created_by, created_at)
		VALUES ($1, $2, $3, $4, false, $5, $6)`
	_, err := r.q.Exec(ctx, query, a.ID, a.OwnerID, a.Amount, a.Description, a.CreatedBy, a.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create balance adjustment: %w", err)
	}
	return nil
}

// GetByID obtiene un ajuste. Devuelve nil, nil si no existe.
func (r *BalanceAdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.BalanceAdjustment, error) {
	if !validID(id) {
		return nil, nil
	}
	a, err := scanAdjustment(r.q.QueryRow(ctx, `SELECT `+adjustmentColumns+` FROM balance_adjustments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance adjustment: %w", err)
	}
	return a, nil
}

// ListUnappliedByOwner ajustes pendientes del dueño.
func (r *BalanceAdjustmentRepo) ListUnappliedByOwner(ctx context.Context, ownerID string) ([]*entity.BalanceAdjustment, error) {
	return r.list(ctx, `SELECT `+adjustmentColumns+`
		FROM balance_adjustments
		WHERE owner_id = $1 AND NOT is_applied
		ORDER BY created_at, id`, ownerID)
}

// ListBySettlement ajustes aplicados en una liquidación.
func (r *BalanceAdjustmentRepo) ListBySettlement(ctx context.Context, settlementID string) ([]*entity.BalanceAdjustment, error) {
	return r.list(ctx, `SELECT `+adjustmentColumns+`
		FROM balance_adjustments
		WHERE settlement_id = $1
		ORDER BY created_at, id`, settlementID)
}

func (r *BalanceAdjustmentRepo) list(ctx context.Context, query, arg string) ([]*entity.BalanceAdjustment, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list balance adjustments: %w", err)
	}
	defer rows.Close()

	var list []*entity.BalanceAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Apply marca el ajuste como aplicado con un UPDATE condicional y devuelve su monto.
func (r *BalanceAdjustmentRepo) Apply(ctx context.Context, id, ownerID, settlementID string, at time.Time) (decimal.Decimal, bool, error) {
	if !validID(id) {
		return decimal.Zero, false, nil
	}
	query := `
		UPDATE balance_adjustments
		SET is_applied = true, settlement_id = $3, applied_at = $4
		WHERE id = $1 AND owner_id = $2 AND NOT is_applied
		RETURNING amount`
	var amount decimal.Decimal
	err := r.q.QueryRow(ctx, query, id, ownerID, settlementID, at).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("apply balance adjustment: %w", err)
	}
	return amount, true, nil
}

// SettlementRepo liquidaciones y sus líneas.
type SettlementRepo struct {
	q Querier
}

// NewSettlementRepository construye el adaptador de liquidaciones.
func NewSettlementRepository(q Querier) *SettlementRepo {
	return &SettlementRepo{q: q}
}

// Create inserta la cabecera de la liquidación.
func (r *SettlementRepo) Create(ctx context.Context, s *entity.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO settlements (id, owner_id, total_amount, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, s.ID, s.OwnerID, s.TotalAmount, s.UserID, s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create settlement: %w", err)
	}
	return nil
}

// UpdateTotal fija el total una vez procesadas las líneas y ajustes.
func (r *SettlementRepo) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE settlements SET total_amount = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("update settlement total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateItem inserta una línea liquidada.
func (r *SettlementRepo) CreateItem(ctx context.Context, item *entity.SettlementItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO settlement_items (id, settlement_id, sale_item_id, quantity, cost_at_sale, amount)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, item.ID, item.SettlementID, item.SaleItemID, item.Quantity, item.CostAtSale, item.Amount)
	if err != nil {
		return fmt.Errorf("create settlement item: %w", err)
	}
	return nil
}

// GetByID obtiene una liquidación. Devuelve nil, nil si no existe.
func (r *SettlementRepo) GetByID(ctx context.Context, id string) (*entity.Settlement, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT id, owner_id, total_amount, user_id, created_at FROM settlements WHERE id = $1`
	var s entity.Settlement
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.OwnerID, &s.TotalAmount, &s.UserID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return &s, nil
}

// ListItems líneas de una liquidación.
func (r *SettlementRepo) ListItems(ctx context.Context, settlementID string) ([]*entity.SettlementItem, error) {
	query := `
		SELECT id, settlement_id, sale_item_id, quantity, cost_at_sale, amount
		FROM settlement_items WHERE settlement_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("list settlement items: %w", err)
	}
	defer rows.Close()

	var list []*entity.SettlementItem
	for rows.Next() {
		var it entity.SettlementItem
		if err := rows.Scan(&it.ID, &it.SettlementID, &it.SaleItemID, &it.Quantity, &it.CostAtSale, &it.Amount); err != nil {
			return nil, fmt.Errorf("scan settlement item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListByOwner historial de liquidaciones del dueño, más recientes primero.
func (r *SettlementRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Settlement, error) {
	query := `
		SELECT id, owner_id, total_amount, user_id, created_at
		FROM settlements WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Settlement
	for rows.Next() {
		var s entity.Settlement
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.TotalAmount, &s.UserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
