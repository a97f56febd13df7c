package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.BalanceAdjustmentRepository = (*adjustmentRepo)(nil)
	_ repository.SettlementRepository        = (*settlementRepo)(nil)
)

type adjustmentRepo struct{ a access }

func (r *adjustmentRepo) Create(_ context.Context, adj *entity.BalanceAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}
	adj.IsApplied = false
	adj.SettlementID = ""
	adj.AppliedAt = nil
	return r.a.write(func(st *state) error {
		if _, ok := st.owners[adj.OwnerID]; !ok {
			return domain.ErrNotFound
		}
		st.adjustments[adj.ID] = *adj
		return nil
	})
}

func (r *adjustmentRepo) GetByID(_ context.Context, id string) (*entity.BalanceAdjustment, error) {
	var out *entity.BalanceAdjustment
	err := r.a.read(func(st *state) error {
		if a, ok := st.adjustments[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *adjustmentRepo) ListUnappliedByOwner(_ context.Context, ownerID string) ([]*entity.BalanceAdjustment, error) {
	return r.list(func(a entity.BalanceAdjustment) bool { return a.OwnerID == ownerID && !a.IsApplied })
}

func (r *adjustmentRepo) ListBySettlement(_ context.Context, settlementID string) ([]*entity.BalanceAdjustment, error) {
	return r.list(func(a entity.BalanceAdjustment) bool { return a.SettlementID == settlementID })
}

func (r *adjustmentRepo) list(match func(entity.BalanceAdjustment) bool) ([]*entity.BalanceAdjustment, error) {
	var out []*entity.BalanceAdjustment
	err := r.a.read(func(st *state) error {
		for _, a := range st.adjustments {
			if match(a) {
				out = append(out, &a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (r *adjustmentRepo) Apply(_ context.Context, id, ownerID, settlementID string, at time.Time) (decimal.Decimal, bool, error) {
	amount := decimal.Zero
	applied := false
	err := r.a.write(func(st *state) error {
		a, ok := st.adjustments[id]
		if !ok || a.OwnerID != ownerID || a.IsApplied {
			return nil
		}
		a.IsApplied = true
		a.SettlementID = settlementID
		a.AppliedAt = &at
		st.adjustments[id] = a
		amount = a.Amount
		applied = true
		return nil
	})
	return amount, applied, err
}

type settlementRepo struct{ a access }

func (r *settlementRepo) Create(_ context.Context, s *entity.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.owners[s.OwnerID]; !ok {
			return domain.ErrNotFound
		}
		st.settlements[s.ID] = *s
		return nil
	})
}

func (r *settlementRepo) UpdateTotal(_ context.Context, id string, total decimal.Decimal) error {
	return r.a.write(func(st *state) error {
		s, ok := st.settlements[id]
		if !ok {
			return domain.ErrNotFound
		}
		s.TotalAmount = total
		st.settlements[id] = s
		return nil
	})
}

func (r *settlementRepo) CreateItem(_ context.Context, item *entity.SettlementItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.settlements[item.SettlementID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.saleItems[item.SaleItemID]; !ok {
			return domain.ErrNotFound
		}
		st.settlementItems = append(st.settlementItems, *item)
		return nil
	})
}

func (r *settlementRepo) GetByID(_ context.Context, id string) (*entity.Settlement, error) {
	var out *entity.Settlement
	err := r.a.read(func(st *state) error {
		if s, ok := st.settlements[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *settlementRepo) ListItems(_ context.Context, settlementID string) ([]*entity.SettlementItem, error) {
	var out []*entity.SettlementItem
	err := r.a.read(func(st *state) error {
		for _, it := range st.settlementItems {
			if it.SettlementID == settlementID {
				out = append(out, &it)
			}
		}
		return nil
	})
	return out, err
}

func (r *settlementRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]*entity.Settlement, error) {
	var out []*entity.Settlement
	err := r.a.read(func(st *state) error {
		for _, s := range st.settlements {
			if s.OwnerID == ownerID {
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), err
}
