package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

type fixture struct {
	store *memory.Store
	uc    *inventory.RegisterMovementUseCase
	owner string
	cat   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	owner := &entity.Owner{Name: "Doña Rosa"}
	require.NoError(t, store.Catalog().CreateOwner(ctx, owner))
	cat := &entity.Category{Name: "Granos"}
	require.NoError(t, store.Catalog().CreateCategory(ctx, cat))

	return &fixture{
		store: store,
		uc:    inventory.NewRegisterMovementUseCase(store, store.Variants(), store.Movements(), logger.Nop()),
		owner: owner.ID,
		cat:   cat.ID,
	}
}

// variant crea producto + variante con stock 0.
func (f *fixture) variant(t *testing.T, uom entity.UnitOfMeasure, sku, cost string) string {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{OwnerID: f.owner, CategoryID: f.cat, Name: "Producto " + sku, UnitOfMeasure: uom}
	require.NoError(t, f.store.Catalog().CreateProduct(ctx, p))
	v := &entity.ProductVariant{
		ProductID: p.ID,
		Name:      "Única",
		SKU:       sku,
		CostPrice: decimal.RequireFromString(cost),
		SalePrice: decimal.RequireFromString(cost).Mul(decimal.NewFromInt(2)),
	}
	require.NoError(t, f.store.Catalog().CreateVariant(ctx, v))
	return v.ID
}

func (f *fixture) stock(t *testing.T, variantID string) int64 {
	t.Helper()
	vp, err := f.store.Variants().GetWithProduct(context.Background(), variantID)
	require.NoError(t, err)
	require.NotNil(t, vp)
	return vp.Variant.Stock
}

func (f *fixture) ledgerSum(t *testing.T, variantID string) int64 {
	t.Helper()
	list, err := f.store.Movements().ListForReplay(context.Background(), variantID)
	require.NoError(t, err)
	var sum int64
	for _, m := range list {
		sum += m.Quantity
	}
	return sum
}
