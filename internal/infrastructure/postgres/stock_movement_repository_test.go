package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

var movementCols = []string{
	"id", "product_id", "kind", "quantity", "origin_kind", "origin_id", "destination_kind", "destination_id",
	"unit_cost", "total_cost", "batch_identifier", "expiry_date", "observation", "user_id",
	"movement_timestamp", "created_at", "deleted_at", "deleted_by",
}

func strPtr(s string) *string { return &s }

func TestStockMovementRepo_AppendGuardaClavesDeUbicacion(t *testing.T) {
	mock := newMock(t)
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := &entity.StockMovement{
		ID: "0b7c2f0e-2a7e-4c61-9a8e-3d1f2b6c9a10", ProductID: "p1", Kind: entity.MovementExit, Quantity: 2,
		Origin:            &entity.Party{Kind: entity.PartyLocation, ID: "Shelf-A"},
		Destination:       &entity.Party{Kind: entity.PartyClient, ID: "cli-1"},
		Observation:       "dispensación",
		UserID:            "u1",
		MovementTimestamp: ts,
		CreatedAt:         ts,
	}
	mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs(m.ID, "p1", "exit", int64(2),
			strPtr("location"), strPtr("Shelf-A"), strPtr("Shelf-A"),
			strPtr("client"), strPtr("cli-1"), strPtr("client:cli-1"),
			(*decimal.Decimal)(nil), (*decimal.Decimal)(nil), "", (*time.Time)(nil),
			"dispensación", "u1", ts, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, postgres.NewStockMovementRepository(mock).Append(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_GetByID(t *testing.T) {
	mock := newMock(t)
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("50.00")
	rows := pgxmock.NewRows(movementCols).AddRow(
		"m1", "p1", "transfer", int64(4),
		strPtr("location"), strPtr("Shelf-A"), strPtr("user"), strPtr("enf-1"),
		(*decimal.Decimal)(nil), &total, "L-1", (*time.Time)(nil), "reposición", "u1",
		ts, ts, (*time.Time)(nil), (*string)(nil),
	)
	mock.ExpectQuery("FROM stock_movements").WithArgs("m1").WillReturnRows(rows)

	m, err := postgres.NewStockMovementRepository(mock).GetByID(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.MovementTransfer, m.Kind)
	assert.Equal(t, "Shelf-A", m.OriginKey())
	assert.Equal(t, "user:enf-1", m.DestinationKey())
	assert.True(t, m.TotalCost.Equal(total))
	assert.Nil(t, m.DeletedAt)
}

func TestStockMovementRepo_GetByIDInexistente(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("FROM stock_movements").WithArgs("nada").WillReturnRows(pgxmock.NewRows(movementCols))

	m, err := postgres.NewStockMovementRepository(mock).GetByID(context.Background(), "nada")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestStockMovementRepo_ListByProductConFiltros(t *testing.T) {
	mock := newMock(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("deleted_at IS NULL AND movement_timestamp >=").
		WithArgs("p1", from, 20, 40).
		WillReturnRows(pgxmock.NewRows(movementCols))

	list, err := postgres.NewStockMovementRepository(mock).ListByProduct(context.Background(), "p1",
		repository.MovementFilter{From: &from, Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_SoftDeleteInexistente(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("UPDATE stock_movements").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := postgres.NewStockMovementRepository(mock).SoftDelete(context.Background(), "nada", "u1", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRepo_Exists(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("FROM suppliers").WithArgs("prov-1").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM clients").WithArgs("cli-9").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	repo := postgres.NewCatalogRepository(mock)
	ok, err := repo.SupplierExists(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ClientExists(context.Background(), "cli-9")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ProductExists(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS stock_locations").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, postgres.EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
