package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, kind, quantity, origin_kind, origin_id, destination_kind, destination_id,
	unit_cost, total_cost, batch_identifier, expiry_date, observation, user_id,
	movement_timestamp, created_at, deleted_at, deleted_by`

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento. Las claves de ubicación se guardan desnormalizadas para los listados.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO stock_movements (
			id, product_id, kind, quantity,
			origin_kind, origin_id, origin_location,
			destination_kind, destination_id, destination_location,
			unit_cost, total_cost, batch_identifier, expiry_date,
			observation, user_id, movement_timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	originKind, originID, originLoc := partyColumns(m.Origin)
	destKind, destID, destLoc := partyColumns(m.Destination)
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Kind), m.Quantity,
		originKind, originID, originLoc,
		destKind, destID, destLoc,
		m.UnitCost, m.TotalCost, m.BatchIdentifier, m.ExpiryDate,
		m.Observation, m.UserID, m.MovementTimestamp, m.CreatedAt,
	)
	if err != nil {
		return mapPgError("append stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento (archivados incluidos). nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id::text = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError("get stock movement", err)
	}
	return m, nil
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by product", `product_id = $1`, productID, filter)
}

// ListByLocation movimientos con origen o destino en la ubicación.
func (r *StockMovementRepo) ListByLocation(ctx context.Context, location string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by location", `(origin_location = $1 OR destination_location = $1)`, location, filter)
}

// ListTouching todo el historial de (producto, ubicación) en orden cronológico.
func (r *StockMovementRepo) ListTouching(ctx context.Context, productID, location string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE product_id = $1 AND (origin_location = $2 OR destination_location = $2)
		ORDER BY movement_timestamp, created_at`
	rows, err := r.q.Query(ctx, query, productID, location)
	if err != nil {
		return nil, mapPgError("list touching movements", err)
	}
	return collectMovements(rows)
}

// SoftDelete marca el movimiento como archivado. Un segundo archivo conserva la primera marca.
func (r *StockMovementRepo) SoftDelete(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE stock_movements
		SET deleted_at = COALESCE(deleted_at, $2), deleted_by = COALESCE(deleted_by, $3)
		WHERE id::text = $1`
	tag, err := r.q.Exec(ctx, query, id, at, userID)
	if err != nil {
		return mapPgError("archive stock movement", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "movement", ID: id}
	}
	return nil
}

func (r *StockMovementRepo) list(ctx context.Context, op, where string, key string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + where
	args := []any{key}
	pos := 2
	if !filter.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND movement_timestamp >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND movement_timestamp <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += " ORDER BY movement_timestamp DESC, created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(op, err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(s scanner) (*entity.StockMovement, error) {
	var (
		m                  entity.StockMovement
		kind               string
		originKind, origin *string
		destKind, dest     *string
		deletedBy          *string
	)
	if err := s.Scan(
		&m.ID, &m.ProductID, &kind, &m.Quantity,
		&originKind, &origin, &destKind, &dest,
		&m.UnitCost, &m.TotalCost, &m.BatchIdentifier, &m.ExpiryDate,
		&m.Observation, &m.UserID, &m.MovementTimestamp, &m.CreatedAt,
		&m.DeletedAt, &deletedBy,
	); err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.Origin = partyFromColumns(originKind, origin)
	m.Destination = partyFromColumns(destKind, dest)
	if deletedBy != nil {
		m.DeletedBy = *deletedBy
	}
	return &m, nil
}

func partyColumns(p *entity.Party) (kind, id, location *string) {
	if p == nil {
		return nil, nil, nil
	}
	k, i, l := string(p.Kind), p.ID, p.LocationKey()
	return &k, &i, &l
}

func partyFromColumns(kind, id *string) *entity.Party {
	if id == nil {
		return nil
	}
	p := entity.Party{Kind: entity.PartyLocation, ID: *id}
	if kind != nil && *kind != "" {
		p.Kind = entity.PartyKind(*kind)
	}
	return &p
}
