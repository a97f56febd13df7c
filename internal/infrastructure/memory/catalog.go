package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.OwnerRepository          = (*ownerRepo)(nil)
	_ repository.CatalogRepository        = (*catalogRepo)(nil)
	_ repository.ProductVariantRepository = (*variantRepo)(nil)
)

type ownerRepo struct{ a access }

func (r *ownerRepo) GetByID(_ context.Context, id string) (*entity.Owner, error) {
	var out *entity.Owner
	err := r.a.read(func(st *state) error {
		if o, ok := st.owners[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

type catalogRepo struct{ a access }

func (r *catalogRepo) CreateOwner(_ context.Context, o *entity.Owner) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.owners[o.ID]; ok {
			return domain.ErrConflict
		}
		st.owners[o.ID] = *o
		return nil
	})
}

func (r *catalogRepo) CreateCategory(_ context.Context, c *entity.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.a.write(func(st *state) error {
		for _, existing := range st.categories {
			if existing.Name == c.Name || existing.ID == c.ID {
				return domain.ErrConflict
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *catalogRepo) CreateProduct(_ context.Context, p *entity.Product) error {
	if !p.UnitOfMeasure.Valid() {
		return fmt.Errorf("%w: unidad de medida %q", domain.ErrInvalidInput, p.UnitOfMeasure)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.owners[p.OwnerID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.categories[p.CategoryID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *catalogRepo) CreateVariant(_ context.Context, v *entity.ProductVariant) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	v.Stock = 0
	v.UpdatedAt = time.Now().UTC()
	return r.a.write(func(st *state) error {
		if _, ok := st.products[v.ProductID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range st.variants {
			if existing.SKU == v.SKU || existing.ID == v.ID {
				return domain.ErrConflict
			}
		}
		st.variants[v.ID] = *v
		return nil
	})
}

type variantRepo struct{ a access }

func (r *variantRepo) GetWithProduct(_ context.Context, variantID string) (*entity.VariantWithProduct, error) {
	var out *entity.VariantWithProduct
	err := r.a.read(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok {
			return nil
		}
		out = &entity.VariantWithProduct{Variant: v, Product: st.products[v.ProductID]}
		return nil
	})
	return out, err
}

// GetForUpdate: dentro de una tx el lock de escritura del Store ya serializa el acceso.
func (r *variantRepo) GetForUpdate(ctx context.Context, variantID string) (*entity.VariantWithProduct, error) {
	return r.GetWithProduct(ctx, variantID)
}

func (r *variantRepo) DecrementStock(_ context.Context, variantID string, qty int64) (bool, error) {
	applied := false
	err := r.a.write(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok || v.Stock < qty {
			return nil
		}
		v.Stock -= qty
		v.UpdatedAt = time.Now().UTC()
		st.variants[variantID] = v
		applied = true
		return nil
	})
	return applied, err
}

func (r *variantRepo) IncrementStock(_ context.Context, variantID string, qty int64) error {
	return r.a.write(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok {
			return domain.ErrNotFound
		}
		v.Stock += qty
		v.UpdatedAt = time.Now().UTC()
		st.variants[variantID] = v
		return nil
	})
}

func (r *variantRepo) UpdateCostPrice(_ context.Context, variantID string, cost decimal.Decimal) error {
	return r.a.write(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok {
			return domain.ErrNotFound
		}
		v.CostPrice = cost
		v.UpdatedAt = time.Now().UTC()
		st.variants[variantID] = v
		return nil
	})
}
