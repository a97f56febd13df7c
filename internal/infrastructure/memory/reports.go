package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct{ a access }

// ReadSnapshot mantiene el lock de lectura mientras fn consulta.
func (r *reportRepo) ReadSnapshot(_ context.Context, fn func(repo repository.ReportRepository) error) error {
	return r.a.read(func(st *state) error {
		return fn(&reportRepo{a: txAccess{st: st}})
	})
}

func inPeriod(s entity.Sale, from, to time.Time) bool {
	return s.Status == entity.SaleStatusCompleted && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to)
}

func (r *reportRepo) GetSalesRevenue(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.a.read(func(st *state) error {
		for _, s := range st.sales {
			if inPeriod(s, from, to) {
				total = total.Add(s.Total)
			}
		}
		return nil
	})
	return total, err
}

func (r *reportRepo) ListSoldLines(_ context.Context, from, to time.Time) ([]repository.SoldLine, error) {
	var out []repository.SoldLine
	err := r.a.read(func(st *state) error {
		for _, id := range st.saleItemOrder {
			it := st.saleItems[id]
			if !inPeriod(st.sales[it.SaleID], from, to) {
				continue
			}
			p := st.products[st.variants[it.VariantID].ProductID]
			c := st.categories[p.CategoryID]
			out = append(out, repository.SoldLine{
				SaleItemID:    it.ID,
				Quantity:      it.Quantity,
				CostAtSale:    it.CostAtSale,
				PriceAtSale:   it.PriceAtSale,
				UnitOfMeasure: p.UnitOfMeasure,
				CategoryID:    c.ID,
				CategoryName:  c.Name,
			})
		}
		return nil
	})
	return out, err
}

func (r *reportRepo) ListStockValuation(_ context.Context) ([]repository.StockValuationRow, error) {
	var out []repository.StockValuationRow
	err := r.a.read(func(st *state) error {
		for _, v := range st.variants {
			out = append(out, repository.StockValuationRow{
				VariantID:     v.ID,
				Stock:         v.Stock,
				CostPrice:     v.CostPrice,
				SalePrice:     v.SalePrice,
				UnitOfMeasure: st.products[v.ProductID].UnitOfMeasure,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out, err
}
