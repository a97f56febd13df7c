package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct{ a access }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return domain.ErrConflict
		}
		st.sales[s.ID] = *s
		return nil
	})
}

func (r *saleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.sales[item.SaleID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.variants[item.VariantID]; !ok {
			return domain.ErrNotFound
		}
		if item.Quantity <= 0 || item.SettledQuantity < 0 || item.SettledQuantity > item.Quantity {
			return domain.ErrInvalidQuantity
		}
		st.saleItems[item.ID] = *item
		st.saleItemOrder = append(st.saleItemOrder, item.ID)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.a.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetForShare(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	var list []*entity.SaleItem
	err := r.a.read(func(st *state) error {
		for _, id := range st.saleItemOrder {
			it := st.saleItems[id]
			if it.SaleID == saleID {
				list = append(list, &it)
			}
		}
		return nil
	})
	return list, err
}

func (r *saleRepo) Cancel(_ context.Context, id string, at time.Time) (bool, error) {
	applied := false
	err := r.a.write(func(st *state) error {
		s, ok := st.sales[id]
		if !ok || s.Status != entity.SaleStatusCompleted {
			return nil
		}
		s.Status = entity.SaleStatusCancelled
		s.CancelledAt = &at
		st.sales[id] = s
		applied = true
		return nil
	})
	return applied, err
}

func (r *saleRepo) MarkPaid(_ context.Context, id string) (bool, error) {
	applied := false
	err := r.a.write(func(st *state) error {
		s, ok := st.sales[id]
		if !ok || s.Status != entity.SaleStatusCompleted || s.PaymentStatus != entity.PaymentStatusPending {
			return nil
		}
		s.PaymentStatus = entity.PaymentStatusPaid
		st.sales[id] = s
		applied = true
		return nil
	})
	return applied, err
}

func (r *saleRepo) GetSettleableItem(_ context.Context, saleItemID string) (*repository.SettleableItem, error) {
	var out *repository.SettleableItem
	err := r.a.read(func(st *state) error {
		it, ok := st.saleItems[saleItemID]
		if !ok {
			return nil
		}
		p := st.products[st.variants[it.VariantID].ProductID]
		out = &repository.SettleableItem{Item: it, OwnerID: p.OwnerID, UnitOfMeasure: p.UnitOfMeasure}
		return nil
	})
	return out, err
}

func (r *saleRepo) AdvanceSettled(_ context.Context, saleItemID string, qty int64) (bool, error) {
	applied := false
	err := r.a.write(func(st *state) error {
		it, ok := st.saleItems[saleItemID]
		if !ok || qty <= 0 || it.SettledQuantity+qty > it.Quantity {
			return nil
		}
		it.SettledQuantity += qty
		st.saleItems[saleItemID] = it
		applied = true
		return nil
	})
	return applied, err
}

func (r *saleRepo) ListPendingByOwner(_ context.Context, ownerID string) ([]repository.PendingSaleItem, error) {
	var out []repository.PendingSaleItem
	err := r.a.read(func(st *state) error {
		for _, id := range st.saleItemOrder {
			it := st.saleItems[id]
			s := st.sales[it.SaleID]
			if !s.GeneratesDebt() || it.Pending() <= 0 {
				continue
			}
			v := st.variants[it.VariantID]
			p := st.products[v.ProductID]
			if p.OwnerID != ownerID {
				continue
			}
			out = append(out, repository.PendingSaleItem{
				SaleItemID:      it.ID,
				SaleID:          it.SaleID,
				VariantID:       it.VariantID,
				VariantName:     v.Name,
				ProductName:     p.Name,
				UnitOfMeasure:   p.UnitOfMeasure,
				Quantity:        it.Quantity,
				SettledQuantity: it.SettledQuantity,
				CostAtSale:      it.CostAtSale,
				SoldAt:          s.CreatedAt,
			})
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldAt.Before(out[j].SoldAt) })
	return out, err
}
