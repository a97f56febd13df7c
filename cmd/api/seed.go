package main

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const seedUser = "seed"

type seedVariant struct {
	sku, name   string
	cost, price string
	qty         float64
}

type seedProduct struct {
	owner, category string
	name            string
	uom             entity.UnitOfMeasure
	variants        []seedVariant
}

var demoCatalog = []seedProduct{
	{owner: "Taller Luna", category: "Velas", name: "Vela de soja", uom: entity.UnitOfMeasureUnit, variants: []seedVariant{
		{sku: "VEL-LAV-200", name: "Lavanda 200 g", cost: "18.00", price: "32.00", qty: 24},
		{sku: "VEL-VAI-200", name: "Vainilla 200 g", cost: "18.00", price: "32.00", qty: 12},
	}},
	{owner: "Tostaduría Sur", category: "Granos", name: "Café de especialidad", uom: entity.UnitOfMeasureGram, variants: []seedVariant{
		// precios por kg
		{sku: "CAF-HUI-GR", name: "Huila grano", cost: "42.00", price: "68.00", qty: 7.5},
	}},
	{owner: "Hilos del Valle", category: "Ropa", name: "Bufanda tejida", uom: entity.UnitOfMeasureUnit, variants: []seedVariant{
		{sku: "BUF-GRS", name: "Gris", cost: "25.00", price: "45.00", qty: 6},
	}},
}

// seedDemo carga dueños, categorías y variantes de ejemplo. El stock entra por el ledger.
func seedDemo(ctx context.Context, catalog repository.CatalogRepository, ledger *inventory.RegisterMovementUseCase) error {
	owners := map[string]string{}
	categories := map[string]string{}
	for _, sp := range demoCatalog {
		if _, ok := owners[sp.owner]; !ok {
			o := &entity.Owner{Name: sp.owner}
			if err := catalog.CreateOwner(ctx, o); err != nil {
				return err
			}
			owners[sp.owner] = o.ID
		}
		if _, ok := categories[sp.category]; !ok {
			c := &entity.Category{Name: sp.category}
			if err := catalog.CreateCategory(ctx, c); err != nil {
				return err
			}
			categories[sp.category] = c.ID
		}
		p := &entity.Product{
			OwnerID:       owners[sp.owner],
			CategoryID:    categories[sp.category],
			Name:          sp.name,
			UnitOfMeasure: sp.uom,
		}
		if err := catalog.CreateProduct(ctx, p); err != nil {
			return err
		}
		for _, sv := range sp.variants {
			v := &entity.ProductVariant{
				ProductID: p.ID,
				Name:      sv.name,
				SKU:       sv.sku,
				CostPrice: decimal.RequireFromString(sv.cost),
				SalePrice: decimal.RequireFromString(sv.price),
			}
			if err := catalog.CreateVariant(ctx, v); err != nil {
				return err
			}
			if _, err := ledger.RecordMovement(ctx, inventory.MovementInput{
				VariantID:   v.ID,
				RawQuantity: sv.qty,
				Type:        entity.MovementTypeEntry,
				Reason:      "inventario inicial",
				UserID:      seedUser,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
