package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
)

// ReportCache guarda reportes de meses cerrados. Un mes cerrado ya no recibe ventas nuevas;
// una anulación tardía lo modifica y debe llamar a Invalidate.
type ReportCache interface {
	GetMonthly(ctx context.Context, year, month int) (*dto.MonthlyReportDTO, bool, error)
	SetMonthly(ctx context.Context, report *dto.MonthlyReportDTO, ttl time.Duration) error
	GetSalesByCategory(ctx context.Context, year, month int) (*dto.SalesByCategoryDTO, bool, error)
	SetSalesByCategory(ctx context.Context, report *dto.SalesByCategoryDTO, ttl time.Duration) error
	Invalidate(ctx context.Context, year, month int) error
}
