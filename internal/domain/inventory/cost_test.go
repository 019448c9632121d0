package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestTotalCost_DoceCincuentaPorCuatro(t *testing.T) {
	unit := decimal.RequireFromString("12.50")
	total := inventory.TotalCost(&unit, 4)
	require.NotNil(t, total)
	assert.True(t, total.Equal(decimal.RequireFromString("50.00")), "12.50 x 4 debe ser 50.00, fue %s", total)
	assert.Equal(t, "50", total.String())
}

func TestTotalCost_RedondeaACentavos(t *testing.T) {
	unit := decimal.RequireFromString("0.333")
	total := inventory.TotalCost(&unit, 3)
	require.NotNil(t, total)
	assert.Equal(t, "1", total.String(), "0.333 x 3 = 0.999 se redondea a 1.00")

	unit = decimal.RequireFromString("1.005")
	total = inventory.TotalCost(&unit, 1)
	assert.Equal(t, "1.01", total.String(), "redondeo half away from zero")
}

func TestTotalCost_SinCostoUnitario(t *testing.T) {
	assert.Nil(t, inventory.TotalCost(nil, 10))
}

func TestTotalCost_Determinista(t *testing.T) {
	unit := decimal.RequireFromString("7.19")
	for q := int64(1); q <= 50; q++ {
		a := inventory.TotalCost(&unit, q)
		b := inventory.TotalCost(&unit, q)
		assert.True(t, a.Equal(*b))
		assert.True(t, a.Equal(unit.Mul(decimal.NewFromInt(q)).Round(2)))
	}
}

func TestNormalizeObservation(t *testing.T) {
	assert.Equal(t, "reposición semanal", inventory.NormalizeObservation("  reposición \n  semanal\t"))
	assert.Equal(t, "", inventory.NormalizeObservation(" \n\t "))
}

func TestUnitCostStorable(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"12.5", true},
		{"0.0013", true},
		{"1.50000", true},
		{"0.00125", false},
		{"99999999999999.9999", true},
		{"100000000000000", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, inventory.UnitCostStorable(decimal.RequireFromString(tc.value)), tc.value)
	}
}
