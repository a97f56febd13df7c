package cache

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/analytics"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
)

var (
	_ analytics.ReportCache = NoopReportCache{}
	_ analytics.ReportCache = (*RedisReportCache)(nil)
)

// NoopReportCache nunca encuentra nada; se usa cuando Redis no está configurado.
type NoopReportCache struct{}

func (NoopReportCache) GetMonthly(_ context.Context, _, _ int) (*dto.MonthlyReportDTO, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) SetMonthly(_ context.Context, _ *dto.MonthlyReportDTO, _ time.Duration) error {
	return nil
}

func (NoopReportCache) GetSalesByCategory(_ context.Context, _, _ int) (*dto.SalesByCategoryDTO, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) SetSalesByCategory(_ context.Context, _ *dto.SalesByCategoryDTO, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context, _, _ int) error {
	return nil
}
