package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner   = (*TxRunner)(nil)
	_ sales.TxRunner       = (*TxRunner)(nil)
	_ consignment.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos atados a la tx.
type TxRunner struct {
	db Beginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db Beginner) *TxRunner {
	return &TxRunner{db: db}
}

// Run transacción del ledger: variantes y movimientos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewProductVariantRepository(q), NewStockMovementRepository(q))
	})
}

// RunSale transacción de venta/anulación: ledger más ventas.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewProductVariantRepository(q), NewStockMovementRepository(q), NewSaleRepository(q))
	})
}

// RunSettlement transacción de liquidación: líneas de venta, ajustes y liquidaciones.
func (r *TxRunner) RunSettlement(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	adjRepo repository.BalanceAdjustmentRepository,
	settlementRepo repository.SettlementRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewSaleRepository(q), NewBalanceAdjustmentRepository(q), NewSettlementRepository(q))
	})
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
