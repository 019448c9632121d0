package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLocation saldo actual de un producto en una ubicación (fila materializada).
// (ProductID, Location) es único y Quantity nunca es negativa en un punto de commit.
type StockLocation struct {
	ProductID       string
	Location        string
	Quantity        int64
	UnitPrice       *decimal.Decimal
	BatchIdentifier string // lote / SKU; vacío = sin lote
	ExpiryDate      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LocationDefaults valores iniciales al crear una fila nueva (get-or-create).
type LocationDefaults struct {
	UnitPrice       *decimal.Decimal
	BatchIdentifier string
	ExpiryDate      *time.Time
}

// Defaults devuelve los atributos de la fila para sembrar otra (traslados).
func (s *StockLocation) Defaults() LocationDefaults {
	return LocationDefaults{
		UnitPrice:       s.UnitPrice,
		BatchIdentifier: s.BatchIdentifier,
		ExpiryDate:      s.ExpiryDate,
	}
}

// Merge sobrescribe precio/lote/vencimiento sólo con los valores que el llamador envía.
// Devuelve true si algo cambió.
func (s *StockLocation) Merge(in LocationDefaults) bool {
	changed := false
	if in.UnitPrice != nil && (s.UnitPrice == nil || !s.UnitPrice.Equal(*in.UnitPrice)) {
		p := *in.UnitPrice
		s.UnitPrice = &p
		changed = true
	}
	if in.BatchIdentifier != "" && in.BatchIdentifier != s.BatchIdentifier {
		s.BatchIdentifier = in.BatchIdentifier
		changed = true
	}
	if in.ExpiryDate != nil && (s.ExpiryDate == nil || !s.ExpiryDate.Equal(*in.ExpiryDate)) {
		d := *in.ExpiryDate
		s.ExpiryDate = &d
		changed = true
	}
	return changed
}
