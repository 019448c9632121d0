package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

const locationColumns = `product_id, location, quantity, unit_price, batch_identifier, expiry_date, created_at, updated_at`

// StockLocationRepo saldos por (producto, ubicación) sobre PostgreSQL (usable con pool o tx).
// FindForUpdate y GetOrCreate solo bloquean dentro de una transacción.
type StockLocationRepo struct {
	q Querier
}

// NewStockLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLocationRepository(q Querier) *StockLocationRepo {
	return &StockLocationRepo{q: q}
}

// Find obtiene el saldo sin bloquear. nil si la fila no existe.
func (r *StockLocationRepo) Find(ctx context.Context, productID, location string) (*entity.StockLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM stock_locations WHERE product_id = $1 AND location = $2`
	return r.findOne(ctx, "find stock location", query, productID, location)
}

// FindForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLocationRepo) FindForUpdate(ctx context.Context, productID, location string) (*entity.StockLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM stock_locations WHERE product_id = $1 AND location = $2 FOR UPDATE`
	return r.findOne(ctx, "lock stock location", query, productID, location)
}

// GetOrCreate inserta la fila con cantidad 0 si no existe y la devuelve bloqueada.
func (r *StockLocationRepo) GetOrCreate(ctx context.Context, productID, location string, defaults entity.LocationDefaults) (*entity.StockLocation, bool, error) {
	query := `
		INSERT INTO stock_locations (product_id, location, quantity, unit_price, batch_identifier, expiry_date)
		VALUES ($1, $2, 0, $3, $4, $5)
		ON CONFLICT (product_id, location) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, productID, location, defaults.UnitPrice, defaults.BatchIdentifier, defaults.ExpiryDate)
	if err != nil {
		return nil, false, mapPgError("create stock location", err)
	}
	row, err := r.FindForUpdate(ctx, productID, location)
	if err != nil {
		return nil, false, err
	}
	if row == nil {
		return nil, false, fmt.Errorf("create stock location: fila %s/%s no visible tras insertar", productID, location)
	}
	return row, tag.RowsAffected() == 1, nil
}

// AdjustQuantity suma delta con guarda de no negatividad en el mismo UPDATE.
func (r *StockLocationRepo) AdjustQuantity(ctx context.Context, productID, location string, delta int64) (*entity.StockLocation, error) {
	query := `
		UPDATE stock_locations
		SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND location = $2 AND quantity + $3 >= 0
		RETURNING ` + locationColumns
	row, err := scanLocation(r.q.QueryRow(ctx, query, productID, location, delta))
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError("adjust stock quantity", err)
	}

	// Sin fila actualizada: o no existe o el saldo no alcanza.
	current, err := r.Find(ctx, productID, location)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &domain.NotFoundError{Kind: "stock_location", ID: location}
	}
	return nil, &domain.InsufficientStockError{
		ProductID: productID, Location: location, Available: current.Quantity, Requested: -delta,
	}
}

// UpdateAttributes persiste precio, lote y vencimiento.
func (r *StockLocationRepo) UpdateAttributes(ctx context.Context, loc *entity.StockLocation) error {
	query := `
		UPDATE stock_locations
		SET unit_price = $3, batch_identifier = $4, expiry_date = $5, updated_at = now()
		WHERE product_id = $1 AND location = $2`
	tag, err := r.q.Exec(ctx, query, loc.ProductID, loc.Location, loc.UnitPrice, loc.BatchIdentifier, loc.ExpiryDate)
	if err != nil {
		return mapPgError("update stock location", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "stock_location", ID: loc.Location}
	}
	return nil
}

// ListByProduct lista los saldos de un producto ordenados por ubicación.
func (r *StockLocationRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM stock_locations WHERE product_id = $1 ORDER BY location`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, mapPgError("list stock locations", err)
	}
	defer rows.Close()
	list := make([]*entity.StockLocation, 0)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock location: %w", err)
		}
		list = append(list, loc)
	}
	return list, rows.Err()
}

func (r *StockLocationRepo) findOne(ctx context.Context, op, query string, args ...any) (*entity.StockLocation, error) {
	row, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError(op, err)
	}
	return row, nil
}

func scanLocation(s scanner) (*entity.StockLocation, error) {
	var l entity.StockLocation
	if err := s.Scan(
		&l.ProductID, &l.Location, &l.Quantity, &l.UnitPrice,
		&l.BatchIdentifier, &l.ExpiryDate, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
