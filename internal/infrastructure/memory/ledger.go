package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*movementRepo)(nil)

type movementRepo struct{ a access }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.variants[m.VariantID]; !ok {
			return domain.ErrNotFound
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListByVariant(_ context.Context, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	err := r.a.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.VariantID != variantID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && !m.CreatedAt.Before(*to) {
				continue
			}
			list = append(list, &m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// más reciente primero; empates en orden inverso de inserción
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *movementRepo) ListForReplay(_ context.Context, variantID string) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	err := r.a.read(func(st *state) error {
		for _, m := range st.movements {
			if m.VariantID == variantID {
				list = append(list, &m)
			}
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, err
}

func (r *movementRepo) ListStockDrift(_ context.Context) ([]repository.StockDrift, error) {
	var out []repository.StockDrift
	err := r.a.read(func(st *state) error {
		sums := make(map[string]int64, len(st.variants))
		for _, m := range st.movements {
			sums[m.VariantID] += m.Quantity
		}
		for id, v := range st.variants {
			if v.Stock != sums[id] {
				out = append(out, repository.StockDrift{VariantID: id, SKU: v.SKU, Stock: v.Stock, LedgerSum: sums[id]})
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b repository.StockDrift) int {
		if a.SKU < b.SKU {
			return -1
		}
		if a.SKU > b.SKU {
			return 1
		}
		return 0
	})
	return out, err
}

// ForceStock escribe el stock materializado sin pasar por el ledger. Solo para tests de auditoría.
func (s *Store) ForceStock(variantID string, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.st.variants[variantID]; ok {
		v.Stock = stock
		s.st.variants[variantID] = v
	}
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
