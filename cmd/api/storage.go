package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Consignacion-api/pkg/config"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
)

// txRunner las tres formas de transacción que usan los casos de uso.
type txRunner interface {
	inventory.TxRunner
	sales.TxRunner
	consignment.TxRunner
}

// storage repositorios del driver elegido. seed solo existe en memoria.
type storage struct {
	tx          txRunner
	owners      repository.OwnerRepository
	variants    repository.ProductVariantRepository
	movements   repository.StockMovementRepository
	sales       repository.SaleRepository
	adjustments repository.BalanceAdjustmentRepository
	settlements repository.SettlementRepository
	reports     repository.ReportRepository
	seed        func(ctx context.Context, ledger *inventory.RegisterMovementUseCase) error
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, func(), error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		log.Info().Msg("almacenamiento en memoria con datos de demostración")
		return &storage{
			tx:          store,
			owners:      store.Owners(),
			variants:    store.Variants(),
			movements:   store.Movements(),
			sales:       store.Sales(),
			adjustments: store.Adjustments(),
			settlements: store.Settlements(),
			reports:     store.Reports(),
			seed: func(ctx context.Context, ledger *inventory.RegisterMovementUseCase) error {
				return seedDemo(ctx, store.Catalog(), ledger)
			},
		}, func() {}, nil

	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		log.Info().Int("max_conns", cfg.DB.MaxConns).Msg("almacenamiento PostgreSQL")
		return &storage{
			tx:          postgres.NewTxRunner(pool),
			owners:      postgres.NewOwnerRepository(pool),
			variants:    postgres.NewProductVariantRepository(pool),
			movements:   postgres.NewStockMovementRepository(pool),
			sales:       postgres.NewSaleRepository(pool),
			adjustments: postgres.NewBalanceAdjustmentRepository(pool),
			settlements: postgres.NewSettlementRepository(pool),
			reports:     postgres.NewReportRepository(pool),
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.App.StorageDriver)
}
