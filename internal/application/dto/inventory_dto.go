package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	Kind              string           `json:"kind"`
	ProductID         string           `json:"product_id"`
	Quantity          int64            `json:"quantity"`
	OriginID          string           `json:"origin_id,omitempty"`
	OriginKind        string           `json:"origin_kind,omitempty"`
	DestinationID     string           `json:"destination_id,omitempty"`
	DestinationKind   string           `json:"destination_kind,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchIdentifier   string           `json:"batch_identifier,omitempty"`
	ExpiryDate        string           `json:"expiry_date,omitempty"` // YYYY-MM-DD o RFC3339
	Observation       string           `json:"observation"`
	MovementTimestamp *time.Time       `json:"movement_timestamp,omitempty"`
}

// PartyDTO origen o destino de un movimiento.
type PartyDTO struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Location string `json:"location"`
}

// StockMovementResponse registro confirmado del libro.
type StockMovementResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	Kind              string           `json:"kind"`
	Quantity          int64            `json:"quantity"`
	Origin            *PartyDTO        `json:"origin,omitempty"`
	Destination       *PartyDTO        `json:"destination,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	BatchIdentifier   string           `json:"batch_identifier,omitempty"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Observation       string           `json:"observation"`
	UserID            string           `json:"user_id"`
	MovementTimestamp time.Time        `json:"movement_timestamp"`
	CreatedAt         time.Time        `json:"created_at"`
	DeletedAt         *time.Time       `json:"deleted_at,omitempty"`
}

// StockLocationResponse saldo actual de un producto en una ubicación.
type StockLocationResponse struct {
	ProductID       string           `json:"product_id"`
	Location        string           `json:"location"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	BatchIdentifier string           `json:"batch_identifier,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// ReconciliationResponse comparación saldo registrado vs. saldo derivado del libro.
type ReconciliationResponse struct {
	ProductID  string `json:"product_id"`
	Location   string `json:"location"`
	Recorded   int64  `json:"recorded"`
	Derived    int64  `json:"derived"`
	Movements  int    `json:"movements"`
	Consistent bool   `json:"consistent"`
}

// MovementListQuery filtros de listado del libro (query string).
type MovementListQuery struct {
	PageRequest
	From           string `query:"from"`
	To             string `query:"to"`
	IncludeDeleted bool   `query:"include_deleted"`
}
