package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

func TestParseDate_ConservaElDiaDelLlamador(t *testing.T) {
	cases := map[string]time.Time{
		"2026-01-01":                time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"2026-01-01T23:00:00-05:00": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"2026-01-01T01:00:00+09:00": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := inventory.ParseDate(in)
		require.NoError(t, err, in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), "%s: esperado %s, fue %s", in, want, got)
	}

	empty, err := inventory.ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = inventory.ParseDate("31/01/2026")
	assert.Error(t, err)
}

func TestParseTimestamp_ConservaElInstante(t *testing.T) {
	got, err := inventory.ParseTimestamp("2026-01-01T23:00:00-05:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC).Equal(*got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestRegisterMovementFromRequest_VencimientoConZonaNegativa(t *testing.T) {
	e := newEngine(t)
	resp, err := e.uc.RegisterMovementFromRequest(context.Background(), "enf-1", dto.RegisterMovementRequest{
		Kind:          "entry",
		ProductID:     productP,
		Quantity:      5,
		DestinationID: "Shelf-A",
		ExpiryDate:    "2026-01-01T23:00:00-05:00",
		Observation:   "compra",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ExpiryDate)
	assert.Equal(t, "2026-01-01", resp.ExpiryDate.Format(time.DateOnly))

	row, err := e.store.Locations().Find(context.Background(), productP, "Shelf-A")
	require.NoError(t, err)
	require.NotNil(t, row)
	require.NotNil(t, row.ExpiryDate)
	assert.Equal(t, "2026-01-01", row.ExpiryDate.Format(time.DateOnly))
}
