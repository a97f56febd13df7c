package consignment_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const cashier = "cajero-1"

type fixture struct {
	store  *memory.Store
	ledger *inventory.RegisterMovementUseCase
	sales  *sales.SaleUseCase
	uc     *consignment.BalanceUseCase
	cat    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	cat := &entity.Category{Name: "Consignación"}
	require.NoError(t, store.Catalog().CreateCategory(context.Background(), cat))

	ledger := inventory.NewRegisterMovementUseCase(store, store.Variants(), store.Movements(), logger.Nop())
	return &fixture{
		store:  store,
		ledger: ledger,
		sales:  sales.NewSaleUseCase(store, ledger, store.Sales(), nil, logger.Nop()),
		uc: consignment.NewBalanceUseCase(store, store.Owners(), store.Sales(), store.Adjustments(),
			store.Settlements(), logger.Nop()),
		cat: cat.ID,
	}
}

func (f *fixture) owner(t *testing.T, name string) string {
	t.Helper()
	o := &entity.Owner{Name: name}
	require.NoError(t, f.store.Catalog().CreateOwner(context.Background(), o))
	return o.ID
}

// variant crea una variante del dueño con stock inicial qty (unidades o kg).
func (f *fixture) variant(t *testing.T, ownerID string, uom entity.UnitOfMeasure, sku, cost string, qty float64) string {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{OwnerID: ownerID, CategoryID: f.cat, Name: sku, UnitOfMeasure: uom}
	require.NoError(t, f.store.Catalog().CreateProduct(ctx, p))
	v := &entity.ProductVariant{
		ProductID: p.ID, Name: sku, SKU: sku,
		CostPrice: decimal.RequireFromString(cost),
		SalePrice: decimal.RequireFromString(cost).Mul(decimal.RequireFromString("1.6")),
	}
	require.NoError(t, f.store.Catalog().CreateVariant(ctx, v))
	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInput{
		VariantID: v.ID, RawQuantity: qty, Type: entity.MovementTypeEntry, UserID: cashier,
	})
	require.NoError(t, err)
	return v.ID
}

// sell registra una venta pagada de una sola línea y devuelve el id de la línea.
func (f *fixture) sell(t *testing.T, variantID string, qty float64, payment string) string {
	t.Helper()
	sale, err := f.sales.Checkout(context.Background(), sales.SaleInput{
		UserID: cashier, PaymentStatus: payment,
		Lines: []sales.SaleLine{{VariantID: variantID, RawQuantity: qty}},
	})
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	return sale.Items[0].ID
}
