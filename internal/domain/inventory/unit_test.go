package inventory_test

import (
	"math"
	"testing"

	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits_Gramos(t *testing.T) {
	cases := []struct {
		kg   float64
		want int64
	}{
		{1.5, 1500},
		{0.25, 250},
		{1.005, 1005},
		{2, 2000},
		{0.0005, 1},
	}
	for _, c := range cases {
		got, err := inventory.ToBaseUnits(c.kg, entity.UnitOfMeasureGram)
		require.NoError(t, err, "kg=%v", c.kg)
		assert.Equal(t, c.want, got, "kg=%v", c.kg)
	}
}

func TestToBaseUnits_Unidades(t *testing.T) {
	got, err := inventory.ToBaseUnits(10, entity.UnitOfMeasureUnit)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

func TestToBaseUnits_Rechazos(t *testing.T) {
	cases := []struct {
		name string
		raw  float64
		uom  entity.UnitOfMeasure
	}{
		{"fraccion en producto por unidad", 2.5, entity.UnitOfMeasureUnit},
		{"cero", 0, entity.UnitOfMeasureUnit},
		{"negativo", -3, entity.UnitOfMeasureGram},
		{"NaN", math.NaN(), entity.UnitOfMeasureGram},
		{"infinito", math.Inf(1), entity.UnitOfMeasureUnit},
		{"menos de medio gramo", 0.0004, entity.UnitOfMeasureGram},
		{"unidad desconocida", 1, entity.UnitOfMeasure("LITER")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := inventory.ToBaseUnits(c.raw, c.uom)
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(inventory.FromBaseUnits(1500, entity.UnitOfMeasureGram)))
	assert.True(t, decimal.NewFromInt(7).Equal(inventory.FromBaseUnits(7, entity.UnitOfMeasureUnit)))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, int64(1), inventory.Direction(entity.MovementTypeEntry))
	assert.Equal(t, int64(1), inventory.Direction(entity.MovementTypeReturn))
	assert.Equal(t, int64(1), inventory.Direction(entity.MovementTypeSaleCancelled))
	assert.Equal(t, int64(-1), inventory.Direction(entity.MovementTypeSale))
	assert.Equal(t, int64(-1), inventory.Direction(entity.MovementTypeAdjustment))
	assert.Equal(t, int64(-1), inventory.Direction(entity.MovementTypeOwnerWithdrawal))
	assert.Equal(t, int64(0), inventory.Direction(entity.MovementType("GIFT")))
}
