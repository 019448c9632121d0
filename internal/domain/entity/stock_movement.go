package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento.
const (
	MovementEntry    MovementKind = "entry"    // entrada
	MovementExit     MovementKind = "exit"     // salida
	MovementTransfer MovementKind = "transfer" // traslado entre partes
)

// Valid indica si el tipo es uno de los tres soportados.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementTransfer:
		return true
	}
	return false
}

// StockMovement registro inmutable de un evento que afecta inventario.
// Las correcciones se modelan como movimientos compensatorios, nunca como ediciones.
type StockMovement struct {
	ID                string
	ProductID         string
	Kind              MovementKind
	Quantity          int64 // siempre positiva; el signo lo da Kind
	Origin            *Party
	Destination       *Party
	UnitCost          *decimal.Decimal
	TotalCost         *decimal.Decimal // UnitCost * Quantity redondeado a centavos
	BatchIdentifier   string
	ExpiryDate        *time.Time
	Observation       string
	UserID            string
	MovementTimestamp time.Time
	CreatedAt         time.Time
	DeletedAt         *time.Time // archivo de auditoría, no revierte saldos
	DeletedBy         string
}

// OriginKey clave de ubicación del origen, vacía si no hay origen.
func (m *StockMovement) OriginKey() string {
	if m.Origin == nil {
		return ""
	}
	return m.Origin.LocationKey()
}

// DestinationKey clave de ubicación del destino, vacía si no hay destino.
func (m *StockMovement) DestinationKey() string {
	if m.Destination == nil {
		return ""
	}
	return m.Destination.LocationKey()
}
