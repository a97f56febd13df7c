package repository

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
)

// CatalogRepository alta de dueños, categorías, productos y variantes.
// Las variantes nacen con stock 0: el stock solo entra por el ledger.
type CatalogRepository interface {
	CreateOwner(ctx context.Context, owner *entity.Owner) error
	CreateCategory(ctx context.Context, category *entity.Category) error
	CreateProduct(ctx context.Context, product *entity.Product) error
	CreateVariant(ctx context.Context, variant *entity.ProductVariant) error
}
