package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

const (
	variantID    = "6f1c2a0e-8f3b-4c7e-9a51-2d4e6b8c0f13"
	missingID    = "0b7e4d2c-1a9f-4e63-8c5d-7f2a9e1b3c40"
	adjustmentID = "a3d95e71-4c28-4b0f-9e16-58c2f0d7b4a9"
)

var variantColumns = []string{
	"v_id", "v_product_id", "v_name", "v_sku", "v_stock", "v_cost_price", "v_sale_price", "v_updated_at",
	"p_id", "p_owner_id", "p_category_id", "p_name", "p_unit_of_measure", "p_created_at",
}

func variantRow(stock int64, uom entity.UnitOfMeasure) *pgxmock.Rows {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(variantColumns).AddRow(
		variantID, "p-1", "Única", "SKU-1", stock, decimal.NewFromInt(10), decimal.NewFromInt(15), now,
		"p-1", "o-1", "c-1", "Café", string(uom), now,
	)
}

func TestTxRunner_CommitSiNoHayError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE product_variants SET stock = stock \+ \$2`).
		WithArgs(variantID, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	runner := postgres.NewTxRunner(mock)
	err := runner.Run(context.Background(), func(v repository.ProductVariantRepository, _ repository.StockMovementRepository) error {
		return v.IncrementStock(context.Background(), variantID, 5)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_RollbackSiFalla(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	runner := postgres.NewTxRunner(mock)
	err := runner.RunSettlement(context.Background(), func(repository.SaleRepository, repository.BalanceAdjustmentRepository, repository.SettlementRepository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_ErrorAlIniciar(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	runner := postgres.NewTxRunner(mock)
	called := false
	err := runner.RunSale(context.Background(), func(repository.ProductVariantRepository, repository.StockMovementRepository, repository.SaleRepository) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// El caso de uso completo sobre SQL: si la resta condicional no afecta filas no se inserta
// el movimiento y la transacción se revierte.
func TestRecordMovement_SinStockHaceRollback(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM product_variants v JOIN products p`).
		WithArgs(variantID).
		WillReturnRows(variantRow(10, entity.UnitOfMeasureUnit))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE product_variants SET stock = stock - \$2, updated_at = now\(\) WHERE id = \$1 AND stock >= \$2`).
		WithArgs(variantID, int64(50)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	uc := inventory.NewRegisterMovementUseCase(
		postgres.NewTxRunner(mock),
		postgres.NewProductVariantRepository(mock),
		postgres.NewStockMovementRepository(mock),
		logger.Nop(),
	)
	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		VariantID: variantID, RawQuantity: 50, Type: entity.MovementTypeAdjustment, UserID: "u-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_EntradaEnGramosEscribeStockYLedger(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM product_variants v JOIN products p`).
		WithArgs(variantID).
		WillReturnRows(variantRow(0, entity.UnitOfMeasureGram))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE product_variants SET stock = stock \+ \$2`).
		WithArgs(variantID, int64(1500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO stock_movements`).
		WithArgs(pgxmock.AnyArg(), variantID, int64(1500), "ENTRY", pgxmock.AnyArg(), "u-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	uc := inventory.NewRegisterMovementUseCase(
		postgres.NewTxRunner(mock),
		postgres.NewProductVariantRepository(mock),
		postgres.NewStockMovementRepository(mock),
		logger.Nop(),
	)
	mov, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		VariantID: variantID, RawQuantity: 1.5, Type: entity.MovementTypeEntry, Reason: "ingreso", UserID: "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), mov.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
