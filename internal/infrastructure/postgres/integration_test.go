//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Consignacion-api/pkg/config"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type pgEnv struct {
	pool    *pgxpool.Pool
	catalog *postgres.CatalogRepo
	ledger  *inventory.RegisterMovementUseCase
	sales   *sales.SaleUseCase
	balance *consignment.BalanceUseCase
}

func startPostgres(t *testing.T) *pgEnv {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("consignacion_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	version, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runner := postgres.NewTxRunner(pool)
	ledger := inventory.NewRegisterMovementUseCase(runner, postgres.NewProductVariantRepository(pool),
		postgres.NewStockMovementRepository(pool), logger.Nop())
	return &pgEnv{
		pool:    pool,
		catalog: postgres.NewCatalogRepository(pool),
		ledger:  ledger,
		sales:   sales.NewSaleUseCase(runner, ledger, postgres.NewSaleRepository(pool), nil, logger.Nop()),
		balance: consignment.NewBalanceUseCase(runner, postgres.NewOwnerRepository(pool), postgres.NewSaleRepository(pool),
			postgres.NewBalanceAdjustmentRepository(pool), postgres.NewSettlementRepository(pool), logger.Nop()),
	}
}

func (e *pgEnv) seedVariant(t *testing.T, uom entity.UnitOfMeasure, stock float64) (ownerID, variantID string) {
	t.Helper()
	ctx := context.Background()
	o := &entity.Owner{Name: "Rosa", Phone: "3001234567"}
	require.NoError(t, e.catalog.CreateOwner(ctx, o))
	c := &entity.Category{Name: "Cat " + o.ID}
	require.NoError(t, e.catalog.CreateCategory(ctx, c))
	p := &entity.Product{OwnerID: o.ID, CategoryID: c.ID, Name: "Café", UnitOfMeasure: uom}
	require.NoError(t, e.catalog.CreateProduct(ctx, p))
	v := &entity.ProductVariant{ProductID: p.ID, Name: "500 g", SKU: "SKU-" + p.ID,
		CostPrice: decimal.NewFromInt(50), SalePrice: decimal.NewFromInt(80)}
	require.NoError(t, e.catalog.CreateVariant(ctx, v))
	_, err := e.ledger.RecordMovement(ctx, inventory.MovementInput{
		VariantID: v.ID, RawQuantity: stock, Type: entity.MovementTypeEntry, UserID: "u-1",
	})
	require.NoError(t, err)
	return o.ID, v.ID
}

func TestIntegration_RetirosConcurrentes(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	_, variantID := e.seedVariant(t, entity.UnitOfMeasureUnit, 10)

	const workers = 30
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.RecordMovement(ctx, inventory.MovementInput{
				VariantID: variantID, RawQuantity: 1, Type: entity.MovementTypeOwnerWithdrawal, UserID: "u-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 10, ok)

	audit, err := e.ledger.AuditLedger(ctx)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)

	replay, err := e.ledger.ReplayVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), replay.CurrentStock)
	assert.Equal(t, int64(0), replay.ReplayedStock)
}

func TestIntegration_LiquidacionConcurrente(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	ownerID, variantID := e.seedVariant(t, entity.UnitOfMeasureUnit, 10)

	sale, err := e.sales.Checkout(ctx, sales.SaleInput{UserID: "u-1", Lines: []sales.SaleLine{{VariantID: variantID, RawQuantity: 10}}})
	require.NoError(t, err)
	itemID := sale.Items[0].ID

	_, err = e.balance.SettleOwnerBalance(ctx, consignment.SettleInput{
		OwnerID: ownerID, UserID: "u-1", Lines: []consignment.SettleLine{{SaleItemID: itemID, Quantity: 4}},
	})
	require.NoError(t, err)

	bal, err := e.balance.ComputeOwnerBalance(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(bal.DebtFromSales), bal.DebtFromSales.String())

	const workers = 6
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.balance.SettleOwnerBalance(ctx, consignment.SettleInput{
				OwnerID: ownerID, UserID: "u-1", Lines: []consignment.SettleLine{{SaleItemID: itemID, Quantity: 6}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.True(t, errors.Is(err, domain.ErrConcurrentSettlement), err)
	}
	assert.Equal(t, 1, ok)

	bal, err = e.balance.ComputeOwnerBalance(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, bal.TotalNetDebt.IsZero())
	assert.Empty(t, bal.PendingLines)

	// una venta con líneas liquidadas ya no se puede anular
	_, err = e.sales.CancelSale(ctx, sale.ID, "u-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestIntegration_LedgerInmutable(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	_, variantID := e.seedVariant(t, entity.UnitOfMeasureGram, 1.5)

	_, err := e.pool.Exec(ctx, `UPDATE stock_movements SET quantity = 1 WHERE variant_id = $1`, variantID)
	require.Error(t, err)
	_, err = e.pool.Exec(ctx, `DELETE FROM stock_movements WHERE variant_id = $1`, variantID)
	require.Error(t, err)

	_, err = e.pool.Exec(ctx, `UPDATE product_variants SET stock = -1 WHERE id = $1`, variantID)
	require.Error(t, err)
}
