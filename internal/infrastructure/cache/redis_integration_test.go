//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	c := cache.NewRedisReportCache(addr, "", 0)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.GetMonthly(ctx, 2024, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	report := &dto.MonthlyReportDTO{
		Year: 2024, Month: 2,
		Revenue:        decimal.RequireFromString("1500.50"),
		COGS:           decimal.RequireFromString("900.25"),
		NetIncome:      decimal.RequireFromString("600.25"),
		TotalUnitsSold: 7,
	}
	require.NoError(t, c.SetMonthly(ctx, report, time.Minute))

	got, ok, err := c.GetMonthly(ctx, 2024, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, report.Revenue.Equal(got.Revenue))
	assert.True(t, report.NetIncome.Equal(got.NetIncome))
	assert.Equal(t, 7, got.TotalUnitsSold)

	cats := &dto.SalesByCategoryDTO{Year: 2024, Month: 2, Categories: []dto.CategorySalesDTO{
		{CategoryID: "c1", CategoryName: "Ropa", Revenue: decimal.NewFromInt(100), Total: decimal.NewFromInt(40)},
	}}
	require.NoError(t, c.SetSalesByCategory(ctx, cats, time.Minute))
	gotCats, ok, err := c.GetSalesByCategory(ctx, 2024, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, gotCats.Categories, 1)
	assert.Equal(t, "Ropa", gotCats.Categories[0].CategoryName)
	require.NoError(t, c.Invalidate(ctx, 2024, 2))
	_, ok, err = c.GetMonthly(ctx, 2024, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.GetSalesByCategory(ctx, 2024, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
