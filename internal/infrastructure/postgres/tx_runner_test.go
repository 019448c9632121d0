package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

var locationCols = []string{
	"product_id", "location", "quantity", "unit_price", "batch_identifier", "expiry_date", "created_at", "updated_at",
}

func locationRow(productID, location string, qty int64, price *decimal.Decimal) *pgxmock.Rows {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(locationCols).AddRow(productID, location, qty, price, "", (*time.Time)(nil), now, now)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func noop(repository.StockMovementRepository, repository.StockLocationRepository) error { return nil }

func TestTxRunner_CommitConLockTimeout(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout = 1500").WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectCommit()

	runner := postgres.NewTxRunner(mock, 1500*time.Millisecond)
	require.NoError(t, runner.Run(context.Background(), noop))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_ErrorDelCallbackHaceRollback(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	runner := postgres.NewTxRunner(mock, 0)
	err := runner.Run(context.Background(), func(repository.StockMovementRepository, repository.StockLocationRepository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_FalloEnCommit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

	runner := postgres.NewTxRunner(mock, 0)
	err := runner.Run(context.Background(), noop)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_FalloEnBegin(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("sin conexiones"))

	runner := postgres.NewTxRunner(mock, 0)
	err := runner.Run(context.Background(), noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
}

func newPostgresUseCase(mock pgxmock.PgxPoolIface) *inventory.RegisterMovementUseCase {
	catalog := memory.NewStore(memory.Options{OpenCatalog: true}).Catalog()
	return inventory.NewRegisterMovementUseCase(postgres.NewTxRunner(mock, 0), catalog, nil, nil, zerolog.Nop())
}

func exit(qty int64) inventory.MovementInput {
	return inventory.MovementInput{
		Kind: entity.MovementExit, ProductID: "p1", Quantity: qty,
		OriginID: "Shelf-A", Observation: "consumo", UserID: "u1",
	}
}

func TestRegisterMovement_Postgres_FalloDelLibroHaceRollback(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("p1", "Shelf-A").WillReturnRows(locationRow("p1", "Shelf-A", 50, nil))
	mock.ExpectQuery("UPDATE stock_locations").WithArgs("p1", "Shelf-A", int64(-30)).
		WillReturnRows(locationRow("p1", "Shelf-A", 20, nil))
	mock.ExpectExec("INSERT INTO stock_movements").WillReturnError(errors.New("conexión perdida"))
	mock.ExpectRollback()

	_, err := newPostgresUseCase(mock).RegisterMovement(context.Background(), exit(30))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMovement_Postgres_LockTimeoutEsConflicto(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("p1", "Shelf-A").
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	_, err := newPostgresUseCase(mock).RegisterMovement(context.Background(), exit(1))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.True(t, domain.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMovement_Postgres_SaldoInsuficienteSinEscrituras(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("p1", "Shelf-A").WillReturnRows(locationRow("p1", "Shelf-A", 50, nil))
	mock.ExpectRollback()

	_, err := newPostgresUseCase(mock).RegisterMovement(context.Background(), exit(70))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMovement_Postgres_EntradaConfirma(t *testing.T) {
	mock := newMock(t)
	cost := decimal.RequireFromString("12.50")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stock_locations").
		WithArgs("p1", "Shelf-A", &cost, "", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("FOR UPDATE").WithArgs("p1", "Shelf-A").WillReturnRows(locationRow("p1", "Shelf-A", 0, &cost))
	mock.ExpectQuery("UPDATE stock_locations").WithArgs("p1", "Shelf-A", int64(4)).
		WillReturnRows(locationRow("p1", "Shelf-A", 4, &cost))
	mock.ExpectExec("INSERT INTO stock_movements").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	in := inventory.MovementInput{
		Kind: entity.MovementEntry, ProductID: "p1", Quantity: 4, DestinationID: "Shelf-A",
		UnitCost: &cost, Observation: "compra", UserID: "u1",
	}
	mov, err := newPostgresUseCase(mock).RegisterMovement(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "50.00", mov.TotalCost.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
