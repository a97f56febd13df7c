package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo altas del catálogo en consignación.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador del catálogo.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// CreateOwner inserta un dueño.
func (r *CatalogRepo) CreateOwner(ctx context.Context, o *entity.Owner) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO owners (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, nullable(o.Phone), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// CreateCategory inserta una categoría; nombre duplicado es ErrConflict.
func (r *CatalogRepo) CreateCategory(ctx context.Context, c *entity.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateProduct inserta un producto.
func (r *CatalogRepo) CreateProduct(ctx context.Context, p *entity.Product) error {
	if !p.UnitOfMeasure.Valid() {
		return fmt.Errorf("%w: unidad de medida %q", domain.ErrInvalidInput, p.UnitOfMeasure)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO products (id, owner_id, category_id, name, unit_of_measure, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, p.ID, p.OwnerID, p.CategoryID, p.Name, string(p.UnitOfMeasure), p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// CreateVariant inserta una variante con stock 0.
func (r *CatalogRepo) CreateVariant(ctx context.Context, v *entity.ProductVariant) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	v.Stock = 0
	v.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO product_variants (id, product_id, name, sku, stock, cost_price, sale_price, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, v.ID, v.ProductID, v.Name, v.SKU, v.CostPrice, v.SalePrice, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create variant: %w", err)
	}
	return nil
}
