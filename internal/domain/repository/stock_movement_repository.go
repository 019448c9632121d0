package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter paginación y rango de fechas para lecturas del libro.
type MovementFilter struct {
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// StockMovementRepository puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, filter MovementFilter) ([]*entity.StockMovement, error)
	ListByLocation(ctx context.Context, location string, filter MovementFilter) ([]*entity.StockMovement, error)
	// ListTouching todos los movimientos (archivados incluidos) que tocan (producto, ubicación).
	ListTouching(ctx context.Context, productID, location string) ([]*entity.StockMovement, error)
	// SoftDelete marca el movimiento como archivado. Nunca revierte saldos.
	SoftDelete(ctx context.Context, id, userID string, at time.Time) error
}
